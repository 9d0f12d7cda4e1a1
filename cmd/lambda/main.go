// The lambda binary is the production deployment: Cognito for
// identity, DynamoDB for user records, API Gateway proxy events in.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	auth "github.com/brightpath/auth-service"
	"github.com/brightpath/auth-service/cognito"
	"github.com/brightpath/auth-service/config"
	"github.com/brightpath/auth-service/dynamo"
	"github.com/brightpath/auth-service/gateway"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := auth.DefaultLogger()

	identity, err := cognito.New(ctx, *cfg, logger)
	if err != nil {
		log.Fatalf("cognito init: %v", err)
	}
	users, err := dynamo.New(ctx, *cfg, logger)
	if err != nil {
		log.Fatalf("dynamo init: %v", err)
	}

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTExpiresIn, logger)
	svc := auth.NewService(identity, users, tokens).WithLogger(logger)

	gw := gateway.New(svc, tokens,
		gateway.WithLogger(logger),
		gateway.WithServiceInfo(cfg.ServiceName, cfg.ServiceVersion),
	)

	lambda.Start(gw.Handle)
}
