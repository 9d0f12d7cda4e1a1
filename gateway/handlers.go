package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/events"

	auth "github.com/brightpath/auth-service"
)

// parseBody decodes the request body into dst. API Gateway always
// hands us a string body, possibly empty.
func parseBody(req events.APIGatewayProxyRequest, dst any) error {
	if req.Body == "" {
		return errors.New("empty request body")
	}
	return json.Unmarshal([]byte(req.Body), dst)
}

// bearerToken pulls the raw token out of the Authorization header.
// API Gateway preserves header casing from the client, so both
// spellings show up in the wild.
func bearerToken(req events.APIGatewayProxyRequest) string {
	header := req.Headers["Authorization"]
	if header == "" {
		header = req.Headers["authorization"]
	}
	return auth.ExtractBearer(header)
}

// authenticate verifies the bearer token on a protected route.
func (g *Gateway) authenticate(req events.APIGatewayProxyRequest) (*auth.AccessClaims, error) {
	token := bearerToken(req)
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	return g.tokens.Verify(token)
}

func unauthorized(err error) events.APIGatewayProxyResponse {
	message := "Invalid or expired token"
	if errors.Is(err, auth.ErrMissingToken) {
		message = "No authorization token provided"
	}
	return respond(401, &auth.AuthResponse{
		Success: false,
		Message: message,
		Error:   auth.ErrorCode(err),
	})
}

func (g *Gateway) health(_ context.Context, _ events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	return respond(200, map[string]any{
		"success":   true,
		"message":   "Auth service is healthy",
		"service":   g.service,
		"version":   g.version,
		"timestamp": auth.NowISO(),
	})
}

func (g *Gateway) register(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body auth.RegisterRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	return respondResult(g.svc.Register(ctx, body), 201, 400)
}

func (g *Gateway) login(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body auth.LoginRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	return respondResult(g.svc.Login(ctx, body), 200, 401)
}

func (g *Gateway) getProfile(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	claims, err := g.authenticate(req)
	if err != nil {
		return unauthorized(err)
	}
	return respondResult(g.svc.Profile(ctx, claims.UserID), 200, 404)
}

func (g *Gateway) updateProfile(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	claims, err := g.authenticate(req)
	if err != nil {
		return unauthorized(err)
	}
	var body auth.UpdateProfileRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	return respondResult(g.svc.UpdateProfile(ctx, claims.UserID, body), 200, 400)
}

func (g *Gateway) changePassword(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	claims, err := g.authenticate(req)
	if err != nil {
		return unauthorized(err)
	}
	var body auth.ChangePasswordRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	return respondResult(g.svc.ChangePassword(ctx, claims.UserID, body), 200, 400)
}

func (g *Gateway) forgotPassword(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body auth.PasswordResetRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	return respondResult(g.svc.InitiatePasswordReset(ctx, body), 200, 400)
}

func (g *Gateway) confirmPasswordReset(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body auth.PasswordResetConfirmRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	return respondResult(g.svc.ConfirmPasswordReset(ctx, body), 200, 400)
}

func (g *Gateway) refreshToken(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body auth.RefreshRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	return respondResult(g.svc.Refresh(ctx, body.RefreshToken), 200, 401)
}

// signOut only needs a token to forward to the identity store; it does
// not verify it first, so an already-expired access token can still
// revoke its session.
func (g *Gateway) signOut(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	token := bearerToken(req)
	if token == "" {
		return badRequest("No authorization token provided")
	}
	return respondResult(g.svc.SignOut(ctx, token), 200, 400)
}

func (g *Gateway) deleteAccount(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	claims, err := g.authenticate(req)
	if err != nil {
		return unauthorized(err)
	}
	return respondResult(g.svc.DeleteAccount(ctx, claims.UserID), 200, 400)
}
