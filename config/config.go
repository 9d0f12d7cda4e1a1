// Package config handles runtime settings for the auth gateway,
// including development defaults and environment overlay.
package config

import "os"

// Config holds runtime settings for the gateway.
//
// Fields:
//   - AWSRegion / AWSEndpoint: region and optional local endpoint
//     override (localstack-style development). When AWSEndpoint is set,
//     AWSAccessKey/AWSSecretKey are used as static credentials.
//   - CognitoUserPoolID / CognitoClientID: identity store addressing.
//   - UsersTable / SchoolsTable / TicketsTable / ProspectsTable:
//     document database tables.
//   - JWTSecret: HMAC secret for HS256 signing. Do not ship defaults.
//   - JWTExpiresIn: compact access-token TTL string ("24h", "30m").
//   - HTTPAddr / LocalDBPath: local development server settings.
type Config struct {
	ServiceName      string
	ServiceVersion   string
	AWSRegion        string
	AWSEndpoint      string
	AWSAccessKey     string
	AWSSecretKey     string
	CognitoUserPoolID string
	CognitoClientID  string
	UsersTable       string
	SchoolsTable     string
	TicketsTable     string
	ProspectsTable   string
	JWTSecret        string
	JWTExpiresIn     string
	HTTPAddr         string
	LocalDBPath      string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be
// overridden through the environment.
func (c *Config) LoadDefaults() {
	c.ServiceName = "auth-service"
	c.ServiceVersion = "1.0.0"
	c.AWSRegion = "us-east-1"
	c.UsersTable = "brightpath-users"
	c.SchoolsTable = "brightpath-schools"
	c.TicketsTable = "brightpath-tickets"
	c.ProspectsTable = "brightpath-prospects"
	c.JWTSecret = "dev-jwt-secret-change-in-production"
	c.JWTExpiresIn = "24h"
	c.HTTPAddr = ":8080"
	c.LocalDBPath = "auth-dev.db"
}

// Load builds a Config by applying defaults and overlaying values from
// the environment.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.ServiceName = getEnvOr("SERVICE_NAME", cfg.ServiceName)
	cfg.ServiceVersion = getEnvOr("SERVICE_VERSION", cfg.ServiceVersion)
	cfg.AWSRegion = getEnvOr("AWS_REGION", cfg.AWSRegion)
	cfg.AWSEndpoint = getEnvOr("AWS_ENDPOINT", cfg.AWSEndpoint)
	cfg.AWSAccessKey = getEnvOr("AWS_ACCESS_KEY_ID", cfg.AWSAccessKey)
	cfg.AWSSecretKey = getEnvOr("AWS_SECRET_ACCESS_KEY", cfg.AWSSecretKey)
	cfg.CognitoUserPoolID = getEnvOr("COGNITO_USER_POOL_ID", cfg.CognitoUserPoolID)
	cfg.CognitoClientID = getEnvOr("COGNITO_CLIENT_ID", cfg.CognitoClientID)
	cfg.UsersTable = getEnvOr("DYNAMODB_USERS_TABLE", cfg.UsersTable)
	cfg.SchoolsTable = getEnvOr("DYNAMODB_SCHOOLS_TABLE", cfg.SchoolsTable)
	cfg.TicketsTable = getEnvOr("DYNAMODB_TICKETS_TABLE", cfg.TicketsTable)
	cfg.ProspectsTable = getEnvOr("DYNAMODB_PROSPECTS_TABLE", cfg.ProspectsTable)
	cfg.JWTSecret = getEnvOr("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpiresIn = getEnvOr("JWT_EXPIRES_IN", cfg.JWTExpiresIn)
	cfg.HTTPAddr = getEnvOr("HTTP_ADDR", cfg.HTTPAddr)
	cfg.LocalDBPath = getEnvOr("LOCAL_DB_PATH", cfg.LocalDBPath)
	return cfg
}

func getEnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
