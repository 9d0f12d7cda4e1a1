// Package gateway maps API Gateway proxy events onto the auth service.
// It owns route resolution, CORS, bearer-token enforcement, and the
// translation of typed failures into HTTP statuses.
package gateway

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	auth "github.com/brightpath/auth-service"
)

// HandlerFunc handles one resolved route.
type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse

type route struct {
	key     string
	handler HandlerFunc
}

// Gateway dispatches inbound events. Resolution order: exact
// "METHOD /path" match, then wildcard patterns in registration order
// where each "*" matches exactly one path segment, then 404.
type Gateway struct {
	svc       *auth.Service
	tokens    auth.TokenService
	logger    auth.Logger
	service   string
	version   string
	exact     map[string]HandlerFunc
	wildcards []route
}

type Option func(*Gateway)

func WithLogger(logger auth.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithServiceInfo sets the identity reported by the health endpoint.
func WithServiceInfo(name, version string) Option {
	return func(g *Gateway) {
		g.service = name
		g.version = version
	}
}

// New builds the gateway and registers the route table.
func New(svc *auth.Service, tokens auth.TokenService, opts ...Option) *Gateway {
	g := &Gateway{
		svc:     svc,
		tokens:  tokens,
		logger:  nil,
		service: "auth-service",
		version: "dev",
		exact:   map[string]HandlerFunc{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = noopLogger{}
	}
	g.registerRoutes()
	return g
}

func (g *Gateway) registerRoutes() {
	g.route("GET /auth/health", g.health)
	g.route("POST /auth/register", g.register)
	g.route("POST /auth/login", g.login)
	g.route("GET /auth/profile", g.getProfile)
	g.route("PUT /auth/profile", g.updateProfile)
	g.route("POST /auth/change-password", g.changePassword)
	g.route("POST /auth/forgot-password", g.forgotPassword)
	g.route("POST /auth/confirm-password-reset", g.confirmPasswordReset)
	g.route("POST /auth/refresh-token", g.refreshToken)
	g.route("POST /auth/signout", g.signOut)
	g.route("DELETE /auth/account", g.deleteAccount)

	g.route("GET /admin/stats", g.adminStats)
	g.route("GET /admin/schools", g.adminSchools)
	g.route("PUT /admin/schools/*/status", g.adminUpdateSchoolStatus)
	g.route("GET /admin/schools/*/teachers", g.adminSchoolTeachers)
	g.route("GET /admin/users", g.adminUsersWithActivity)
	g.route("PUT /admin/users/*/status", g.adminUpdateUserStatus)
	g.route("POST /admin/users/*/reset-password", g.adminResetUserPassword)
	g.route("GET /admin/tickets", g.adminSupportTickets)
	g.route("PUT /admin/tickets/*", g.adminUpdateSupportTicket)
	g.route("POST /admin/system-admins", g.adminCreateSystemAdmin)
	g.route("POST /admin/teachers", g.adminCreateTeacher)
	g.route("GET /admin/prospects/*", g.adminProspectsByState)
}

func (g *Gateway) route(key string, handler HandlerFunc) {
	if strings.Contains(key, "*") {
		g.wildcards = append(g.wildcards, route{key: key, handler: handler})
		return
	}
	g.exact[key] = handler
}

// Handle is the Lambda entrypoint. It never returns an error: anything
// that escapes a handler becomes a 500 envelope.
func (g *Gateway) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("panic handling %s %s: %v", req.HTTPMethod, req.Path, r)
			resp = respond(500, &auth.AuthResponse{
				Success: false,
				Message: "Internal server error",
			})
			err = nil
		}
	}()

	// CORS preflight bypasses all routing logic.
	if req.HTTPMethod == "OPTIONS" {
		return g.cors(ctx, req), nil
	}

	handler := g.resolve(req.HTTPMethod, req.Path)
	if handler == nil {
		g.logger.Info("no handler for %s %s", req.HTTPMethod, req.Path)
		return respond(404, &auth.AuthResponse{
			Success: false,
			Message: "Endpoint not found",
			Error:   auth.TextCodeNotFound,
		}), nil
	}

	return handler(ctx, req), nil
}

func (g *Gateway) resolve(method, path string) HandlerFunc {
	if h, ok := g.exact[method+" "+path]; ok {
		return h
	}
	key := method + " " + path
	for _, r := range g.wildcards {
		if matchPattern(r.key, key) {
			return r.handler
		}
	}
	return nil
}

// matchPattern compares a registered "METHOD /a/*/b" key against a
// request key. A "*" segment matches exactly one non-empty path
// segment and never crosses a "/" boundary.
func matchPattern(pattern, key string) bool {
	pp := strings.Split(pattern, "/")
	kp := strings.Split(key, "/")
	if len(pp) != len(kp) {
		return false
	}
	for i := range pp {
		if pp[i] == "*" {
			if kp[i] == "" {
				return false
			}
			continue
		}
		if pp[i] != kp[i] {
			return false
		}
	}
	return true
}

// pathSegment returns the i-th segment of a "/a/b/c" path, counting
// from zero after the leading slash.
func pathSegment(path string, i int) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if i < 0 || i >= len(parts) {
		return ""
	}
	return parts[i]
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
