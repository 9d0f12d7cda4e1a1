package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// refreshTokenType discriminates refresh tokens from access tokens so
// neither can stand in for the other.
const refreshTokenType = "refresh"

// AccessClaims is the signed payload of an access token. Only a payload
// that came out of TokenService.Verify may be used for authorization.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	SchoolID string   `json:"schoolId,omitempty"`
	// TokenType is empty on access tokens; Verify rejects anything else.
	TokenType string `json:"type,omitempty"`
}

// RefreshClaims is the signed payload of a refresh token. It carries no
// role or school on purpose: a refresh token proves identity, not
// privilege.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	TokenType string `json:"type"`
}

// BelongsToSchool is a strict equality check. No hierarchy is implied:
// an admin does not belong to every school.
func (c *AccessClaims) BelongsToSchool(schoolID string) bool {
	return c.SchoolID == schoolID
}

// IsAtLeast checks the claim's role against the hierarchy.
func (c *AccessClaims) IsAtLeast(min UserRole) bool {
	return c.Role.IsAtLeast(min)
}
