package gateway

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"

	auth "github.com/brightpath/auth-service"
)

// corsHeaders go out on every response, preflight or not. The browser
// clients are served from arbitrary origins so the policy is permissive.
func corsHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	}
}

func (g *Gateway) cors(_ context.Context, _ events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Headers:    corsHeaders(),
		Body:       "",
	}
}

func respond(status int, body any) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Headers:    corsHeaders(),
			Body:       `{"success":false,"message":"Internal server error"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       string(payload),
	}
}

// respondResult maps a service-layer result to okStatus or failStatus
// based on the Success flag.
func respondResult(res *auth.AuthResponse, okStatus, failStatus int) events.APIGatewayProxyResponse {
	if res.Success {
		return respond(okStatus, res)
	}
	return respond(failStatus, res)
}

func badRequest(message string) events.APIGatewayProxyResponse {
	return respond(400, &auth.AuthResponse{Success: false, Message: message})
}

func dataResponse(message string, data any) events.APIGatewayProxyResponse {
	return respond(200, map[string]any{
		"success": true,
		"message": message,
		"data":    data,
	})
}
