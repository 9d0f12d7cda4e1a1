package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	auth "github.com/brightpath/auth-service"
)

var testSigningKey = []byte("test-signing-key")

func testUser() *auth.User {
	return &auth.User{
		UserID:   "user-123",
		Email:    "teacher@example.com",
		Role:     auth.RoleTeacher,
		SchoolID: "sch-1",
		IsActive: true,
	}
}

func TestNewTokenService(t *testing.T) {
	t.Run("creates token service with logger", func(t *testing.T) {
		service := auth.NewTokenService(testSigningKey, "24h", &MockLogger{})
		assert.NotNil(t, service)
	})

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service := auth.NewTokenService(testSigningKey, "24h", nil)
		assert.NotNil(t, service)
	})
}

func TestParseExpiresIn(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"45s", 45 * time.Second},
		{"30m", 30 * time.Minute},
		{"24h", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"", 24 * time.Hour},
		{"banana", 24 * time.Hour},
		{"10x", 24 * time.Hour},
		{"h", 24 * time.Hour},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, auth.ParseExpiresIn(tc.input))
		})
	}
}

func TestTokenService_GenerateAndVerify(t *testing.T) {
	service := auth.NewTokenService(testSigningKey, "1h", &MockLogger{})
	user := testUser()

	t.Run("round trips access token claims", func(t *testing.T) {
		token, err := service.Generate(user)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := service.Verify(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "user-123", claims.Subject)
		assert.Equal(t, "teacher@example.com", claims.Email)
		assert.Equal(t, auth.RoleTeacher, claims.Role)
		assert.Equal(t, "sch-1", claims.SchoolID)
		assert.NotNil(t, claims.IssuedAt)
		assert.NotNil(t, claims.ExpiresAt)
	})

	t.Run("verify is repeatable", func(t *testing.T) {
		token, err := service.Generate(user)
		assert.NoError(t, err)

		first, err := service.Verify(token)
		assert.NoError(t, err)
		second, err := service.Verify(token)
		assert.NoError(t, err)
		assert.Equal(t, first.UserID, second.UserID)
	})

	t.Run("sets configured expiration", func(t *testing.T) {
		before := time.Now()
		token, err := service.Generate(user)
		assert.NoError(t, err)

		expiry, ok := service.Expiration(token)
		assert.True(t, ok)
		assert.True(t, expiry.After(before.Add(time.Hour-time.Second)))
		assert.True(t, expiry.Before(before.Add(time.Hour+time.Minute)))
	})

	t.Run("rejects token signed with different key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("other-key"), "1h", &MockLogger{})
		token, err := other.Generate(user)
		assert.NoError(t, err)

		_, err = service.Verify(token)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		_, err := service.Verify("not-a-token")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})
}

func TestTokenService_Expiry(t *testing.T) {
	service := auth.NewTokenService(testSigningKey, "1h", &MockLogger{})

	expiredToken := func(t *testing.T) string {
		t.Helper()
		claims := &auth.AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-123",
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			UserID: "user-123",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
		assert.NoError(t, err)
		return token
	}

	t.Run("verify reports expiry distinctly", func(t *testing.T) {
		_, err := service.Verify(expiredToken(t))
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("IsExpired true for expired token", func(t *testing.T) {
		assert.True(t, service.IsExpired(expiredToken(t)))
	})

	t.Run("IsExpired false for fresh token", func(t *testing.T) {
		token, err := service.Generate(testUser())
		assert.NoError(t, err)
		assert.False(t, service.IsExpired(token))
	})
}

func TestTokenService_RefreshTokens(t *testing.T) {
	service := auth.NewTokenService(testSigningKey, "1h", &MockLogger{})
	user := testUser()

	t.Run("refresh token round trips", func(t *testing.T) {
		token, err := service.GenerateRefresh(user)
		assert.NoError(t, err)

		claims, err := service.VerifyRefresh(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("refresh token expires well after access token", func(t *testing.T) {
		token, err := service.GenerateRefresh(user)
		assert.NoError(t, err)

		expiry, ok := service.Expiration(token)
		assert.True(t, ok)
		assert.True(t, expiry.After(time.Now().Add(29*24*time.Hour)))
	})

	t.Run("access token is rejected as refresh token", func(t *testing.T) {
		access, err := service.Generate(user)
		assert.NoError(t, err)

		_, err = service.VerifyRefresh(access)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("refresh token is rejected as access token", func(t *testing.T) {
		refresh, err := service.GenerateRefresh(user)
		assert.NoError(t, err)

		_, err = service.Verify(refresh)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})
}

func TestTokenService_GeneratePair(t *testing.T) {
	service := auth.NewTokenService(testSigningKey, "1h", &MockLogger{})

	pair, err := service.GeneratePair(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	_, err = service.Verify(pair.AccessToken)
	assert.NoError(t, err)
	_, err = service.VerifyRefresh(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenService_Decode(t *testing.T) {
	service := auth.NewTokenService(testSigningKey, "1h", &MockLogger{})

	t.Run("decodes without verifying signature", func(t *testing.T) {
		other := auth.NewTokenService([]byte("other-key"), "1h", &MockLogger{})
		token, err := other.Generate(testUser())
		assert.NoError(t, err)

		claims, err := service.Decode(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
	})

	t.Run("fails on malformed input", func(t *testing.T) {
		_, err := service.Decode("garbage")
		assert.Error(t, err)
	})
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"well formed", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc.def.ghi", ""},
		{"scheme only", "Bearer", ""},
		{"extra segment", "Bearer abc def", ""},
		{"lowercase scheme", "bearer abc.def.ghi", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, auth.ExtractBearer(tc.header))
		})
	}
}
