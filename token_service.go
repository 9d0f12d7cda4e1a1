package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// refreshTokenTTL is fixed regardless of the configured access TTL.
const refreshTokenTTL = 30 * 24 * time.Hour

// defaultAccessTTL is used when the configured expiry string cannot be
// understood.
const defaultAccessTTL = 24 * time.Hour

// TokenPair is a freshly issued access + refresh token couple.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues and verifies the signed, time-bounded claims this
// system uses for sessions. There is no persistence and no revocation:
// validity is proven by signature and expiry alone.
type TokenService interface {
	Generate(user *User) (string, error)
	GenerateRefresh(user *User) (string, error)
	GeneratePair(user *User) (TokenPair, error)
	Verify(token string) (*AccessClaims, error)
	VerifyRefresh(token string) (*RefreshClaims, error)
	Decode(token string) (*AccessClaims, error)
	IsExpired(token string) bool
	Expiration(token string) (time.Time, bool)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	logger     Logger
}

// NewTokenService creates a new TokenService instance. expiresIn is a
// compact duration string ("45m", "24h", "7d"); unrecognized input
// falls back to 24h.
func NewTokenService(signingKey []byte, expiresIn string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		accessTTL:  ParseExpiresIn(expiresIn),
		logger:     logger,
	}
}

// ParseExpiresIn parses "<N><unit>" with units s, m, h, d. Anything it
// cannot understand yields the 24h default.
func ParseExpiresIn(expiresIn string) time.Duration {
	if len(expiresIn) < 2 {
		return defaultAccessTTL
	}
	value, err := strconv.Atoi(expiresIn[:len(expiresIn)-1])
	if err != nil || value < 0 {
		return defaultAccessTTL
	}
	switch expiresIn[len(expiresIn)-1] {
	case 's':
		return time.Duration(value) * time.Second
	case 'm':
		return time.Duration(value) * time.Minute
	case 'h':
		return time.Duration(value) * time.Hour
	case 'd':
		return time.Duration(value) * 24 * time.Hour
	default:
		return defaultAccessTTL
	}
}

// Generate creates a signed access token carrying the user's identity,
// role, and school affiliation.
func (ts *TokenServiceImpl) Generate(user *User) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
		UserID:   user.UserID,
		Email:    user.Email,
		Role:     user.Role,
		SchoolID: user.SchoolID,
	}
	return ts.sign(claims)
}

// GenerateRefresh creates a signed refresh token. It carries identity
// only, with a fixed 30 day expiry.
func (ts *TokenServiceImpl) GenerateRefresh(user *User) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTokenTTL)),
		},
		UserID:    user.UserID,
		Email:     user.Email,
		TokenType: refreshTokenType,
	}
	return ts.sign(claims)
}

// GeneratePair issues the access + refresh couple handed out at login,
// registration, and refresh rotation.
func (ts *TokenServiceImpl) GeneratePair(user *User) (TokenPair, error) {
	access, err := ts.Generate(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := ts.GenerateRefresh(user)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (ts *TokenServiceImpl) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

// Verify parses and validates an access token. Signature mismatch,
// structural corruption, and expiry all collapse to the same invalid
// outcome; a refresh token presented here is rejected the same way.
func (ts *TokenServiceImpl) Verify(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, ts.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token, additionally
// requiring the refresh type marker so access tokens cannot be
// replayed here. Every failure mode looks identical to the caller.
func (ts *TokenServiceImpl) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, ts.keyFunc)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidRefreshToken
	}
	if claims.TokenType != refreshTokenType {
		return nil, ErrInvalidRefreshToken
	}
	return claims, nil
}

func (ts *TokenServiceImpl) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		ts.logger.Error("TokenService encountered unexpected signing method: %v", t.Header["alg"])
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return ts.signingKey, nil
}

// Decode parses a token without verifying the signature. The result is
// for expiry inspection only and MUST NOT authorize anything.
func (ts *TokenServiceImpl) Decode(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// IsExpired reports whether an unverified token is past its expiry.
// Undecodable tokens count as expired.
func (ts *TokenServiceImpl) IsExpired(tokenString string) bool {
	exp, ok := ts.Expiration(tokenString)
	if !ok {
		return true
	}
	return exp.Before(time.Now())
}

// Expiration returns the unverified expiry of a token.
func (ts *TokenServiceImpl) Expiration(tokenString string) (time.Time, bool) {
	claims, err := ts.Decode(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// ExtractBearer pulls the token out of an "Authorization: Bearer <t>"
// header value. Any other shape yields the empty string; it never
// fails louder than that.
func ExtractBearer(headerValue string) string {
	parts := strings.Split(headerValue, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Verify interface compliance
var _ TokenService = (*TokenServiceImpl)(nil)
