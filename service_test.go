package auth_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auth "github.com/brightpath/auth-service"
)

func newServiceUnderTest() (*auth.Service, *MockIdentityStore, *MockUserRepository, *MockTokenService) {
	identity := &MockIdentityStore{}
	users := &MockUserRepository{}
	tokens := &MockTokenService{}
	svc := auth.NewService(identity, users, tokens).WithLogger(&MockLogger{})
	return svc, identity, users, tokens
}

func registerRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Email:     "teacher@example.com",
		Password:  "s3cret!",
		FirstName: "Tom",
		LastName:  "Teacher",
		Role:      auth.RoleTeacher,
		SchoolID:  "sch-1",
	}
}

func activeUser() *auth.User {
	return &auth.User{
		UserID:   "user-123",
		Email:    "teacher@example.com",
		Role:     auth.RoleTeacher,
		SchoolID: "sch-1",
		IsActive: true,
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	pair := auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"}

	t.Run("creates identity account then repository record", func(t *testing.T) {
		svc, identity, users, tokens := newServiceUnderTest()
		req := registerRequest()

		users.On("GetByEmail", ctx, req.Email).Return(nil, nil)
		identity.On("CreateAccount", ctx, req).Return("cognito-sub-1", nil)
		users.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(nil, nil)
		tokens.On("GeneratePair", mock.AnythingOfType("*auth.User")).Return(pair, nil)

		res := svc.Register(ctx, req)

		assert.True(t, res.Success)
		assert.Equal(t, "User registered successfully", res.Message)
		assert.NotNil(t, res.Data)
		assert.Equal(t, "access", res.Data.Tokens.AccessToken)
		assert.Equal(t, "refresh", res.Data.Tokens.RefreshToken)
		assert.Empty(t, res.Data.Tokens.IDToken)

		user := res.Data.User
		assert.Equal(t, "cognito-sub-1", user.CognitoSub)
		assert.True(t, user.IsActive)
		assert.NotEmpty(t, user.UserID)
		if assert.NotNil(t, user.IsIndependent) {
			assert.False(t, *user.IsIndependent)
		}

		identity.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("teacher without school registers as independent", func(t *testing.T) {
		svc, identity, users, tokens := newServiceUnderTest()
		req := registerRequest()
		req.SchoolID = ""

		users.On("GetByEmail", ctx, req.Email).Return(nil, nil)
		identity.On("CreateAccount", ctx, req).Return("cognito-sub-1", nil)
		users.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(nil, nil)
		tokens.On("GeneratePair", mock.Anything).Return(pair, nil)

		res := svc.Register(ctx, req)

		assert.True(t, res.Success)
		if assert.NotNil(t, res.Data.User.IsIndependent) {
			assert.True(t, *res.Data.User.IsIndependent)
		}
	})

	t.Run("student never carries the independence flag", func(t *testing.T) {
		svc, identity, users, tokens := newServiceUnderTest()
		req := registerRequest()
		req.Role = auth.RoleStudent

		users.On("GetByEmail", ctx, req.Email).Return(nil, nil)
		identity.On("CreateAccount", ctx, req).Return("cognito-sub-1", nil)
		users.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(nil, nil)
		tokens.On("GeneratePair", mock.Anything).Return(pair, nil)

		res := svc.Register(ctx, req)

		assert.True(t, res.Success)
		assert.Nil(t, res.Data.User.IsIndependent)
	})

	t.Run("duplicate email short circuits before identity store", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		req := registerRequest()

		users.On("GetByEmail", ctx, req.Email).Return(activeUser(), nil)

		res := svc.Register(ctx, req)

		assert.False(t, res.Success)
		assert.Equal(t, "User already exists", res.Message)
		assert.Equal(t, "USER_EXISTS", res.Error)
		identity.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("identity failure leaves no repository record", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		req := registerRequest()

		users.On("GetByEmail", ctx, req.Email).Return(nil, nil)
		identity.On("CreateAccount", ctx, req).Return("", errors.New("pool unavailable"))

		res := svc.Register(ctx, req)

		assert.False(t, res.Success)
		assert.Equal(t, "Registration failed", res.Message)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	pair := auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"}
	idTokens := &auth.IdentityTokens{AccessToken: "cog-access", IDToken: "cog-id"}

	t.Run("successful login surfaces identity id token", func(t *testing.T) {
		svc, identity, users, tokens := newServiceUnderTest()
		user := activeUser()

		identity.On("Authenticate", ctx, user.Email, "pw").Return(idTokens, nil)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		users.On("TouchLastLogin", ctx, user.UserID).Return(nil)
		tokens.On("GeneratePair", user).Return(pair, nil)

		res := svc.Login(ctx, auth.LoginRequest{Email: user.Email, Password: "pw"})

		assert.True(t, res.Success)
		assert.Equal(t, "Authentication successful", res.Message)
		assert.Equal(t, "access", res.Data.Tokens.AccessToken)
		assert.Equal(t, "cog-id", res.Data.Tokens.IDToken)
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()

		identity.On("Authenticate", ctx, "x@y.co", "bad").
			Return(nil, errors.New("not authorized"))

		res := svc.Login(ctx, auth.LoginRequest{Email: "x@y.co", Password: "bad"})

		assert.False(t, res.Success)
		assert.Equal(t, "Authentication failed", res.Message)
		users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("identity account with no repository record", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()

		identity.On("Authenticate", ctx, "ghost@y.co", "pw").Return(idTokens, nil)
		users.On("GetByEmail", ctx, "ghost@y.co").Return(nil, nil)

		res := svc.Login(ctx, auth.LoginRequest{Email: "ghost@y.co", Password: "pw"})

		assert.False(t, res.Success)
		assert.Equal(t, "USER_NOT_FOUND", res.Error)
	})

	t.Run("deactivated account is rejected after password check", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()
		user.IsActive = false

		identity.On("Authenticate", ctx, user.Email, "pw").Return(idTokens, nil)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)

		res := svc.Login(ctx, auth.LoginRequest{Email: user.Email, Password: "pw"})

		assert.False(t, res.Success)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", res.Error)
		users.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything)
	})

	t.Run("failed lastLogin write fails the login", func(t *testing.T) {
		svc, identity, users, tokens := newServiceUnderTest()
		user := activeUser()

		identity.On("Authenticate", ctx, user.Email, "pw").Return(idTokens, nil)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		users.On("TouchLastLogin", ctx, user.UserID).Return(errors.New("write throttled"))

		res := svc.Login(ctx, auth.LoginRequest{Email: user.Email, Password: "pw"})

		assert.False(t, res.Success)
		tokens.AssertNotCalled(t, "GeneratePair", mock.Anything)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("recomputes independence when school changes", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		users.On("Update", ctx, user.UserID, map[string]any{
			"schoolId":      "",
			"isIndependent": true,
		}).Return(user, nil)

		res := svc.UpdateProfile(ctx, user.UserID, auth.UpdateProfileRequest{SchoolID: strPtr("")})

		assert.True(t, res.Success)
		users.AssertExpectations(t)
		identity.AssertNotCalled(t, "UpdateAttributes", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("joining a school clears independence", func(t *testing.T) {
		svc, _, users, _ := newServiceUnderTest()
		user := activeUser()
		user.SchoolID = ""

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		users.On("Update", ctx, user.UserID, map[string]any{
			"schoolId":      "sch-2",
			"isIndependent": false,
		}).Return(user, nil)

		res := svc.UpdateProfile(ctx, user.UserID, auth.UpdateProfileRequest{SchoolID: strPtr("sch-2")})

		assert.True(t, res.Success)
		users.AssertExpectations(t)
	})

	t.Run("school change on a student does not touch independence", func(t *testing.T) {
		svc, _, users, _ := newServiceUnderTest()
		user := activeUser()
		user.Role = auth.RoleStudent

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		users.On("Update", ctx, user.UserID, map[string]any{
			"schoolId": "sch-2",
		}).Return(user, nil)

		res := svc.UpdateProfile(ctx, user.UserID, auth.UpdateProfileRequest{SchoolID: strPtr("sch-2")})

		assert.True(t, res.Success)
		users.AssertExpectations(t)
	})

	t.Run("name change syncs to identity store", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		users.On("Update", ctx, user.UserID, map[string]any{
			"firstName": "Tim",
		}).Return(user, nil)
		identity.On("UpdateAttributes", ctx, user.Email, map[string]string{
			"given_name": "Tim",
		}).Return(nil)

		res := svc.UpdateProfile(ctx, user.UserID, auth.UpdateProfileRequest{FirstName: strPtr("Tim")})

		assert.True(t, res.Success)
		identity.AssertExpectations(t)
	})

	t.Run("identity sync failure fails the whole update", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		users.On("Update", ctx, user.UserID, mock.Anything).Return(user, nil)
		identity.On("UpdateAttributes", ctx, user.Email, mock.Anything).
			Return(errors.New("pool unavailable"))

		res := svc.UpdateProfile(ctx, user.UserID, auth.UpdateProfileRequest{FirstName: strPtr("Tim")})

		assert.False(t, res.Success)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, users, _ := newServiceUnderTest()
		users.On("GetByID", ctx, "ghost").Return(nil, nil)

		res := svc.UpdateProfile(ctx, "ghost", auth.UpdateProfileRequest{})

		assert.False(t, res.Success)
		assert.Equal(t, "USER_NOT_FOUND", res.Error)
	})
}

func TestService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes identity account before repository record", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		identity.On("DeleteAccount", ctx, user.Email).Return(nil)
		users.On("Delete", ctx, user.UserID).Return(nil)

		res := svc.DeleteAccount(ctx, user.UserID)

		assert.True(t, res.Success)
		identity.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("identity failure leaves repository record in place", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		identity.On("DeleteAccount", ctx, user.Email).Return(errors.New("pool unavailable"))

		res := svc.DeleteAccount(ctx, user.UserID)

		assert.False(t, res.Success)
		users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("repository failure after identity delete still fails", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		identity.On("DeleteAccount", ctx, user.Email).Return(nil)
		users.On("Delete", ctx, user.UserID).Return(errors.New("write throttled"))

		res := svc.DeleteAccount(ctx, user.UserID)

		assert.False(t, res.Success)
	})
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()
	pair := auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}

	t.Run("rotates the pair for an active user", func(t *testing.T) {
		svc, _, users, tokens := newServiceUnderTest()
		user := activeUser()

		tokens.On("VerifyRefresh", "old-refresh").
			Return(&auth.RefreshClaims{UserID: user.UserID, TokenType: "refresh"}, nil)
		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		tokens.On("GeneratePair", user).Return(pair, nil)

		res := svc.Refresh(ctx, "old-refresh")

		assert.True(t, res.Success)
		assert.Equal(t, "new-access", res.Data.Tokens.AccessToken)
		assert.Equal(t, "new-refresh", res.Data.Tokens.RefreshToken)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		svc, _, users, tokens := newServiceUnderTest()

		tokens.On("VerifyRefresh", "bogus").Return(nil, auth.ErrInvalidRefreshToken)

		res := svc.Refresh(ctx, "bogus")

		assert.False(t, res.Success)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", res.Error)
		users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("deactivated user cannot refresh", func(t *testing.T) {
		svc, _, users, tokens := newServiceUnderTest()
		user := activeUser()
		user.IsActive = false

		tokens.On("VerifyRefresh", "old-refresh").
			Return(&auth.RefreshClaims{UserID: user.UserID, TokenType: "refresh"}, nil)
		users.On("GetByID", ctx, user.UserID).Return(user, nil)

		res := svc.Refresh(ctx, "old-refresh")

		assert.False(t, res.Success)
		assert.Equal(t, "USER_NOT_FOUND", res.Error)
		tokens.AssertNotCalled(t, "GeneratePair", mock.Anything)
	})
}

func TestService_VerifyToken(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves active user", func(t *testing.T) {
		svc, _, users, tokens := newServiceUnderTest()
		user := activeUser()

		tokens.On("Verify", "token").Return(&auth.AccessClaims{UserID: user.UserID}, nil)
		users.On("GetByID", ctx, user.UserID).Return(user, nil)

		got, claims := svc.VerifyToken(ctx, "token")

		assert.Equal(t, user, got)
		assert.Equal(t, user.UserID, claims.UserID)
	})

	t.Run("all failures collapse to nil", func(t *testing.T) {
		inactive := activeUser()
		inactive.IsActive = false

		cases := []struct {
			name  string
			setup func(users *MockUserRepository, tokens *MockTokenService)
		}{
			{"bad token", func(_ *MockUserRepository, tokens *MockTokenService) {
				tokens.On("Verify", "token").Return(nil, auth.ErrTokenInvalid)
			}},
			{"lookup error", func(users *MockUserRepository, tokens *MockTokenService) {
				tokens.On("Verify", "token").Return(&auth.AccessClaims{UserID: "user-123"}, nil)
				users.On("GetByID", ctx, "user-123").Return(nil, errors.New("read throttled"))
			}},
			{"no record", func(users *MockUserRepository, tokens *MockTokenService) {
				tokens.On("Verify", "token").Return(&auth.AccessClaims{UserID: "user-123"}, nil)
				users.On("GetByID", ctx, "user-123").Return(nil, nil)
			}},
			{"inactive user", func(users *MockUserRepository, tokens *MockTokenService) {
				tokens.On("Verify", "token").Return(&auth.AccessClaims{UserID: "user-123"}, nil)
				users.On("GetByID", ctx, "user-123").Return(inactive, nil)
			}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				svc, _, users, tokens := newServiceUnderTest()
				tc.setup(users, tokens)

				user, claims := svc.VerifyToken(ctx, "token")

				assert.Nil(t, user)
				assert.Nil(t, claims)
			})
		}
	})
}

func TestService_PasswordFlows(t *testing.T) {
	ctx := context.Background()

	t.Run("change password requires a known user", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		users.On("GetByID", ctx, "ghost").Return(nil, nil)

		res := svc.ChangePassword(ctx, "ghost", auth.ChangePasswordRequest{
			CurrentPassword: "old", NewPassword: "new",
		})

		assert.False(t, res.Success)
		identity.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("change password delegates to identity store", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		identity.On("ChangePassword", ctx, user.Email, "old", "new").Return(nil)

		res := svc.ChangePassword(ctx, user.UserID, auth.ChangePasswordRequest{
			CurrentPassword: "old", NewPassword: "new",
		})

		assert.True(t, res.Success)
		identity.AssertExpectations(t)
	})

	t.Run("wrong current password is reported as such", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		identity.On("ChangePassword", ctx, user.Email, "bad", "new").
			Return(goerrors.New("invalid email or password", goerrors.CategoryAuth))

		res := svc.ChangePassword(ctx, user.UserID, auth.ChangePasswordRequest{
			CurrentPassword: "bad", NewPassword: "new",
		})

		assert.False(t, res.Success)
		assert.Equal(t, "Current password is incorrect", res.Message)
	})

	t.Run("non-auth failure keeps the generic message", func(t *testing.T) {
		svc, identity, users, _ := newServiceUnderTest()
		user := activeUser()

		users.On("GetByID", ctx, user.UserID).Return(user, nil)
		identity.On("ChangePassword", ctx, user.Email, "old", "new").
			Return(errors.New("identity store unavailable"))

		res := svc.ChangePassword(ctx, user.UserID, auth.ChangePasswordRequest{
			CurrentPassword: "old", NewPassword: "new",
		})

		assert.False(t, res.Success)
		assert.Equal(t, "Failed to change password", res.Message)
	})

	t.Run("reset flows pass through", func(t *testing.T) {
		svc, identity, _, _ := newServiceUnderTest()

		identity.On("InitiateReset", ctx, "x@y.co").Return(nil)
		identity.On("ConfirmReset", ctx, "x@y.co", "123456", "new").Return(nil)

		assert.True(t, svc.InitiatePasswordReset(ctx, auth.PasswordResetRequest{Email: "x@y.co"}).Success)
		assert.True(t, svc.ConfirmPasswordReset(ctx, auth.PasswordResetConfirmRequest{
			Email: "x@y.co", Code: "123456", NewPassword: "new",
		}).Success)
	})
}
