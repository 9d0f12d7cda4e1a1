// The server binary is the local development harness: the same
// gateway and service as the lambda deployment, fed by a Fiber HTTP
// server instead of API Gateway, with SQLite user records, an
// in-memory identity store, and seeded demo data.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gofiber/fiber/v2"

	auth "github.com/brightpath/auth-service"
	"github.com/brightpath/auth-service/config"
	"github.com/brightpath/auth-service/gateway"
	"github.com/brightpath/auth-service/identity"
	"github.com/brightpath/auth-service/repository"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := auth.DefaultLogger()

	db, err := repository.Open(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("open local database: %v", err)
	}
	defer db.Close()

	users := repository.New(db, logger)
	if err := users.Init(ctx); err != nil {
		log.Fatalf("init local schema: %v", err)
	}

	ids := identity.New(logger)
	fixtures := repository.DefaultFixtures()
	if err := users.Seed(ctx, fixtures); err != nil {
		log.Fatalf("seed fixtures: %v", err)
	}
	for email, password := range fixtures.Passwords {
		if err := ids.SeedAccount(email, password); err != nil {
			log.Fatalf("seed identity account: %v", err)
		}
	}

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTExpiresIn, logger)
	svc := auth.NewService(ids, users, tokens).WithLogger(logger)
	gw := gateway.New(svc, tokens,
		gateway.WithLogger(logger),
		gateway.WithServiceInfo(cfg.ServiceName, cfg.ServiceVersion),
	)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: false,
	})
	app.All("/*", func(c *fiber.Ctx) error {
		resp, err := gw.Handle(c.UserContext(), proxyRequest(c))
		if err != nil {
			return err
		}
		for name, value := range resp.Headers {
			c.Set(name, value)
		}
		return c.Status(resp.StatusCode).SendString(resp.Body)
	})

	logger.Info("local auth server listening on %s", cfg.HTTPAddr)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// proxyRequest reshapes a Fiber request into the API Gateway proxy
// event the gateway consumes in production.
func proxyRequest(c *fiber.Ctx) events.APIGatewayProxyRequest {
	headers := map[string]string{}
	c.Request().Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})
	return events.APIGatewayProxyRequest{
		HTTPMethod: c.Method(),
		Path:       c.Path(),
		Headers:    headers,
		Body:       string(c.Body()),
	}
}
