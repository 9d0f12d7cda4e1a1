package auth

import (
	"context"

	"github.com/google/uuid"
)

// Service orchestrates the identity store and the user repository into
// the business operations. Every public method returns the uniform
// envelope: collaborator failures are translated, never propagated raw,
// except for the admin write operations in service_admin.go which
// rethrow by design.
type Service struct {
	identity IdentityStore
	users    UserRepository
	tokens   TokenService
	logger   Logger
}

// NewService wires the orchestrator. Collaborators are passed in
// explicitly; nothing is constructed behind the caller's back.
func NewService(identity IdentityStore, users UserRepository, tokens TokenService) *Service {
	return &Service{
		identity: identity,
		users:    users,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	s.logger = logger
	return s
}

func fail(message string, err error) *AuthResponse {
	return &AuthResponse{Success: false, Message: message, Error: ErrorCode(err)}
}

func ok(message string, data *AuthData) *AuthResponse {
	return &AuthResponse{Success: true, Message: message, Data: data}
}

// independence derives the isIndependent flag: meaningful for teachers
// only, true when they have no school affiliation.
func independence(role UserRole, schoolID string) *bool {
	if role != RoleTeacher {
		return nil
	}
	v := schoolID == ""
	return &v
}

// Register creates the account in the identity store first, then the
// repository record, and hands back a token pair. The identity store's
// own ID token is not surfaced on this path.
func (s *Service) Register(ctx context.Context, req RegisterRequest) *AuthResponse {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Register email lookup failed: %v", err)
		return fail("Registration failed", err)
	}
	if existing != nil {
		return fail("User already exists", ErrUserExists)
	}

	externalID, err := s.identity.CreateAccount(ctx, req)
	if err != nil {
		s.logger.Error("Register identity account creation failed: %v", err)
		return fail("Registration failed", err)
	}

	now := NowISO()
	user := &User{
		UserID:        uuid.NewString(),
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          req.Role,
		SchoolID:      req.SchoolID,
		IsIndependent: independence(req.Role, req.SchoolID),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
		CognitoSub:    externalID,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.logger.Error("Register repository create failed (%s): %v", user.UserID, err)
		return fail("Registration failed", err)
	}

	pair, err := s.tokens.GeneratePair(created)
	if err != nil {
		return fail("Registration failed", err)
	}

	return ok("User registered successfully", &AuthData{
		User: created,
		Tokens: TokenBundle{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		},
	})
}

// Login authenticates against the identity store, then requires a
// matching, active repository record. An account that exists only in
// the identity store is a known consistency gap and surfaces as
// USER_NOT_FOUND. The lastLoginAt touch is fail-closed: a failed write
// fails the login even though the credentials already checked out.
func (s *Service) Login(ctx context.Context, req LoginRequest) *AuthResponse {
	idTokens, err := s.identity.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Error("Login authentication failed: %v", err)
		return fail("Authentication failed", err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Login user lookup failed: %v", err)
		return fail("Authentication failed", err)
	}
	if user == nil {
		return fail("User not found", ErrUserNotFound)
	}
	if !user.IsActive {
		return fail("Account is deactivated", ErrAccountDeactivated)
	}

	if err := s.users.TouchLastLogin(ctx, user.UserID); err != nil {
		s.logger.Error("Login lastLogin update failed (%s): %v", user.UserID, err)
		return fail("Authentication failed", err)
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return fail("Authentication failed", err)
	}

	return ok("Authentication successful", &AuthData{
		User: user,
		Tokens: TokenBundle{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			IDToken:      idTokens.IDToken,
		},
	})
}

// Profile returns the stored record. Tokens are not reissued on a
// profile read.
func (s *Service) Profile(ctx context.Context, userID string) *AuthResponse {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("Profile lookup failed (%s): %v", userID, err)
		return fail("Failed to get user profile", err)
	}
	if user == nil {
		return fail("User not found", ErrUserNotFound)
	}
	return ok("User profile retrieved", &AuthData{User: user})
}

// UpdateProfile applies a partial update. A teacher's independence flag
// is recomputed whenever schoolId appears in the update, including when
// it is cleared. Name changes propagate to the identity store; if that
// propagation fails the whole operation fails, there is no
// partial-success envelope.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) *AuthResponse {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("UpdateProfile lookup failed (%s): %v", userID, err)
		return fail("Failed to update profile", err)
	}
	if user == nil {
		return fail("User not found", ErrUserNotFound)
	}

	fields := map[string]any{}
	if req.FirstName != nil {
		fields["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["lastName"] = *req.LastName
	}
	if req.SchoolID != nil {
		fields["schoolId"] = *req.SchoolID
		if user.Role == RoleTeacher {
			fields["isIndependent"] = *req.SchoolID == ""
		}
	}

	updated, err := s.users.Update(ctx, userID, fields)
	if err != nil {
		s.logger.Error("UpdateProfile repository update failed (%s): %v", userID, err)
		return fail("Failed to update profile", err)
	}

	if req.FirstName != nil || req.LastName != nil {
		attrs := map[string]string{}
		if req.FirstName != nil {
			attrs["given_name"] = *req.FirstName
		}
		if req.LastName != nil {
			attrs["family_name"] = *req.LastName
		}
		if err := s.identity.UpdateAttributes(ctx, user.Email, attrs); err != nil {
			s.logger.Error("UpdateProfile identity attribute sync failed (%s): %v", userID, err)
			return fail("Failed to update profile", err)
		}
	}

	return ok("Profile updated successfully", &AuthData{User: updated})
}

// ChangePassword delegates to the identity store, which re-auths with
// the current password first. A failed re-auth and a failed change are
// indistinguishable to the caller.
func (s *Service) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) *AuthResponse {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("ChangePassword lookup failed (%s): %v", userID, err)
		return fail("Failed to change password", err)
	}
	if user == nil {
		return fail("User not found", ErrUserNotFound)
	}
	if err := s.identity.ChangePassword(ctx, user.Email, req.CurrentPassword, req.NewPassword); err != nil {
		s.logger.Error("ChangePassword identity call failed (%s): %v", userID, err)
		if IsAuthError(err) {
			return fail("Current password is incorrect", err)
		}
		return fail("Failed to change password", err)
	}
	return ok("Password changed successfully", nil)
}

// InitiatePasswordReset is a pure passthrough; the repository plays no
// part in recovery codes.
func (s *Service) InitiatePasswordReset(ctx context.Context, req PasswordResetRequest) *AuthResponse {
	if err := s.identity.InitiateReset(ctx, req.Email); err != nil {
		s.logger.Error("InitiatePasswordReset failed: %v", err)
		return fail("Failed to initiate password reset", err)
	}
	return ok("Password reset email sent", nil)
}

// ConfirmPasswordReset completes the recovery-code flow.
func (s *Service) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirmRequest) *AuthResponse {
	if err := s.identity.ConfirmReset(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		s.logger.Error("ConfirmPasswordReset failed: %v", err)
		return fail("Failed to confirm password reset", err)
	}
	return ok("Password reset successfully", nil)
}

// SignOut invalidates identity-store sessions globally. Self-issued
// access and refresh tokens stay valid until natural expiry; there is
// no revocation store.
func (s *Service) SignOut(ctx context.Context, accessToken string) *AuthResponse {
	if err := s.identity.GlobalSignOut(ctx, accessToken); err != nil {
		s.logger.Error("SignOut failed: %v", err)
		return fail("Failed to sign out user", err)
	}
	return ok("User signed out successfully", nil)
}

// DeleteAccount removes the identity-store account first, then the
// repository record. If the second delete fails the system is left with
// an orphaned record and no credentials; there is no compensating
// transaction, so the inconsistency is logged loudly instead.
func (s *Service) DeleteAccount(ctx context.Context, userID string) *AuthResponse {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("DeleteAccount lookup failed (%s): %v", userID, err)
		return fail("Failed to delete user account", err)
	}
	if user == nil {
		return fail("User not found", ErrUserNotFound)
	}

	if err := s.identity.DeleteAccount(ctx, user.Email); err != nil {
		s.logger.Error("DeleteAccount identity delete failed (%s): %v", userID, err)
		return fail("Failed to delete user account", err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		s.logger.Error(
			"DeleteAccount repository delete failed after identity delete; orphaned record remains (%s / %s): %v",
			userID, user.Email, err,
		)
		return fail("Failed to delete user account", err)
	}

	return ok("User account deleted successfully", nil)
}

// Refresh rotates the token pair. The old refresh token is not
// invalidated; without a revocation store it simply ages out.
func (s *Service) Refresh(ctx context.Context, refreshToken string) *AuthResponse {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return fail("Invalid refresh token", ErrInvalidRefreshToken)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Error("Refresh user lookup failed (%s): %v", claims.UserID, err)
		return fail("Failed to refresh token", err)
	}
	if user == nil || !user.IsActive {
		return fail("User not found or inactive", ErrUserNotFound)
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return fail("Failed to refresh token", err)
	}

	return ok("Token refreshed successfully", &AuthData{
		User: user,
		Tokens: TokenBundle{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		},
	})
}

// VerifyToken resolves a bearer token to an active user. Any failure
// anywhere in the chain collapses to nil; callers treat that as "no
// valid session", never as an exception.
func (s *Service) VerifyToken(ctx context.Context, token string) (*User, *AccessClaims) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || user == nil || !user.IsActive {
		return nil, nil
	}
	return user, claims
}
