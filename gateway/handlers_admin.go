package gateway

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"

	auth "github.com/brightpath/auth-service"
)

// requireAdmin resolves the bearer token to a live user record and
// checks the caller sits at or above the admin rank. Rank comes from
// the stored record, not the claims, so deactivating or deleting an
// admin cuts access immediately instead of at token expiry. On failure
// the second return value carries the response to send.
func (g *Gateway) requireAdmin(ctx context.Context, req events.APIGatewayProxyRequest) (*auth.AccessClaims, *events.APIGatewayProxyResponse) {
	token := bearerToken(req)
	if token == "" {
		resp := unauthorized(auth.ErrMissingToken)
		return nil, &resp
	}
	user, claims := g.svc.VerifyToken(ctx, token)
	if user == nil {
		resp := unauthorized(auth.ErrTokenInvalid)
		return nil, &resp
	}
	if !user.Role.IsAtLeast(auth.RoleAdmin) {
		resp := respond(403, &auth.AuthResponse{
			Success: false,
			Message: "Insufficient privileges",
			Error:   "FORBIDDEN",
		})
		return nil, &resp
	}
	return claims, nil
}

// adminFailure maps write-path errors onto statuses. Conflicts and
// missing records get their own codes, everything else is a 400.
func adminFailure(message string, err error) events.APIGatewayProxyResponse {
	status := 400
	switch {
	case errors.Is(err, auth.ErrUserExists):
		status = 409
	case errors.Is(err, auth.ErrUserNotFound):
		status = 404
	}
	return respond(status, &auth.AuthResponse{
		Success: false,
		Message: message,
		Error:   auth.ErrorCode(err),
	})
}

func (g *Gateway) adminStats(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	return dataResponse("System stats retrieved", g.svc.Stats(ctx))
}

func (g *Gateway) adminSchools(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	return dataResponse("Schools retrieved", g.svc.Schools(ctx))
}

func (g *Gateway) adminUpdateSchoolStatus(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	schoolID := pathSegment(req.Path, 2)
	var body auth.UpdateStatusRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	school, err := g.svc.UpdateSchoolStatus(ctx, schoolID, *body.IsActive)
	if err != nil {
		return adminFailure("Failed to update school status", err)
	}
	return dataResponse("School status updated", school)
}

func (g *Gateway) adminSchoolTeachers(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	schoolID := pathSegment(req.Path, 2)
	return dataResponse("Teachers retrieved", g.svc.SchoolTeachers(ctx, schoolID))
}

func (g *Gateway) adminUsersWithActivity(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	return dataResponse("Users retrieved", g.svc.UsersWithActivity(ctx))
}

func (g *Gateway) adminUpdateUserStatus(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	userID := pathSegment(req.Path, 2)
	var body auth.UpdateStatusRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	user, err := g.svc.UpdateUserStatus(ctx, userID, *body.IsActive)
	if err != nil {
		return adminFailure("Failed to update user status", err)
	}
	return dataResponse("User status updated", user)
}

func (g *Gateway) adminResetUserPassword(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	userID := pathSegment(req.Path, 2)
	var body auth.ResetPasswordRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	if err := g.svc.ResetUserPassword(ctx, userID, body.NewPassword); err != nil {
		return adminFailure("Failed to reset user password", err)
	}
	return respond(200, &auth.AuthResponse{
		Success: true,
		Message: "Password reset successfully",
	})
}

func (g *Gateway) adminSupportTickets(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	return dataResponse("Support tickets retrieved", g.svc.SupportTickets(ctx))
}

func (g *Gateway) adminUpdateSupportTicket(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	ticketID := pathSegment(req.Path, 2)
	var body auth.UpdateTicketRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	ticket, err := g.svc.UpdateSupportTicket(ctx, ticketID, body.Status, body.AssignedTo)
	if err != nil {
		return adminFailure("Failed to update support ticket", err)
	}
	return dataResponse("Support ticket updated", ticket)
}

func (g *Gateway) adminCreateSystemAdmin(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	var body auth.CreateSystemAdminRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	user, err := g.svc.CreateSystemAdmin(ctx, body)
	if err != nil {
		return adminFailure("Failed to create system admin", err)
	}
	return respond(201, map[string]any{
		"success": true,
		"message": "System admin created",
		"data":    user,
	})
}

func (g *Gateway) adminCreateTeacher(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	var body auth.CreateTeacherRequest
	if err := parseBody(req, &body); err != nil {
		return badRequest("Invalid JSON in request body")
	}
	if err := body.Validate(); err != nil {
		return badRequest(err.Error())
	}
	user, err := g.svc.CreateTeacher(ctx, body)
	if err != nil {
		return adminFailure("Failed to create teacher", err)
	}
	return respond(201, map[string]any{
		"success": true,
		"message": "Teacher created",
		"data":    user,
	})
}

func (g *Gateway) adminProspectsByState(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if _, errResp := g.requireAdmin(ctx, req); errResp != nil {
		return *errResp
	}
	stateCode := pathSegment(req.Path, 2)
	return dataResponse("Prospects retrieved", g.svc.ProspectsByState(ctx, stateCode))
}
