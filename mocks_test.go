package auth_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auth "github.com/brightpath/auth-service"
)

// MockIdentityStore implements auth.IdentityStore for testing
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) CreateAccount(ctx context.Context, req auth.RegisterRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityStore) Authenticate(ctx context.Context, email, password string) (*auth.IdentityTokens, error) {
	args := m.Called(ctx, email, password)
	if tokens, ok := args.Get(0).(*auth.IdentityTokens); ok {
		return tokens, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) UpdateAttributes(ctx context.Context, email string, attrs map[string]string) error {
	args := m.Called(ctx, email, attrs)
	return args.Error(0)
}

func (m *MockIdentityStore) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	args := m.Called(ctx, email, currentPassword, newPassword)
	return args.Error(0)
}

func (m *MockIdentityStore) InitiateReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockIdentityStore) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	args := m.Called(ctx, email, code, newPassword)
	return args.Error(0)
}

func (m *MockIdentityStore) GlobalSignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockIdentityStore) DeleteAccount(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockIdentityStore) AdminSetPassword(ctx context.Context, email, newPassword string) error {
	args := m.Called(ctx, email, newPassword)
	return args.Error(0)
}

// MockUserRepository implements auth.UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

// Create echoes the input record when the expectation returns (nil,
// nil), the way the real repositories hand back the stored record.
func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	if args.Error(1) == nil {
		return user, nil
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*auth.User, error) {
	args := m.Called(ctx, userID)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, userID string, fields map[string]any) (*auth.User, error) {
	args := m.Called(ctx, userID, fields)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) ListBySchool(ctx context.Context, schoolID string) ([]*auth.User, error) {
	args := m.Called(ctx, schoolID)
	if users, ok := args.Get(0).([]*auth.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role auth.UserRole) ([]*auth.User, error) {
	args := m.Called(ctx, role)
	if users, ok := args.Get(0).([]*auth.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, term string, limit int) ([]*auth.User, error) {
	args := m.Called(ctx, term, limit)
	if users, ok := args.Get(0).([]*auth.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SetActive(ctx context.Context, userID string, active bool) (*auth.User, error) {
	args := m.Called(ctx, userID, active)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SystemStats(ctx context.Context) (*auth.SystemStats, error) {
	args := m.Called(ctx)
	if stats, ok := args.Get(0).(*auth.SystemStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListWithActivity(ctx context.Context) ([]*auth.UserActivity, error) {
	args := m.Called(ctx)
	if activity, ok := args.Get(0).([]*auth.UserActivity); ok {
		return activity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListSchools(ctx context.Context) ([]*auth.School, error) {
	args := m.Called(ctx)
	if schools, ok := args.Get(0).([]*auth.School); ok {
		return schools, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SetSchoolActive(ctx context.Context, schoolID string, active bool) (*auth.School, error) {
	args := m.Called(ctx, schoolID, active)
	if school, ok := args.Get(0).(*auth.School); ok {
		return school, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListSchoolTeachers(ctx context.Context, schoolID string) ([]*auth.User, error) {
	args := m.Called(ctx, schoolID)
	if users, ok := args.Get(0).([]*auth.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListSupportTickets(ctx context.Context) ([]*auth.SupportTicket, error) {
	args := m.Called(ctx)
	if tickets, ok := args.Get(0).([]*auth.SupportTicket); ok {
		return tickets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateSupportTicket(ctx context.Context, ticketID, status, assignedTo string) (*auth.SupportTicket, error) {
	args := m.Called(ctx, ticketID, status, assignedTo)
	if ticket, ok := args.Get(0).(*auth.SupportTicket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListProspectsByState(ctx context.Context, stateCode string) ([]*auth.Prospect, error) {
	args := m.Called(ctx, stateCode)
	if prospects, ok := args.Get(0).([]*auth.Prospect); ok {
		return prospects, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTokenService implements auth.TokenService for testing
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(user *auth.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) GenerateRefresh(user *auth.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) GeneratePair(user *auth.User) (auth.TokenPair, error) {
	args := m.Called(user)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockTokenService) Verify(token string) (*auth.AccessClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*auth.AccessClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) VerifyRefresh(token string) (*auth.RefreshClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*auth.RefreshClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) Decode(token string) (*auth.AccessClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*auth.AccessClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) IsExpired(token string) bool {
	args := m.Called(token)
	return args.Bool(0)
}

func (m *MockTokenService) Expiration(token string) (time.Time, bool) {
	args := m.Called(token)
	return args.Get(0).(time.Time), args.Bool(1)
}

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {}
func (m *MockLogger) Info(format string, args ...any)  {}
func (m *MockLogger) Error(format string, args ...any) {}
