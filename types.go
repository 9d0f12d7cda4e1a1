package auth

import (
	"context"
	"fmt"
)

// Logger is the minimal structured logger the package depends on.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// IdentityTokens are the credentials returned by the identity store on a
// successful password authentication.
type IdentityTokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// IdentityStore is the external managed credential service. It owns
// passwords and account status; this system never stores either.
type IdentityStore interface {
	// CreateAccount provisions an account and returns the store's own
	// identifier for it. Implementations must suppress any welcome
	// notification and leave the account immediately usable with the
	// supplied password.
	CreateAccount(ctx context.Context, req RegisterRequest) (string, error)
	Authenticate(ctx context.Context, email, password string) (*IdentityTokens, error)
	UpdateAttributes(ctx context.Context, email string, attrs map[string]string) error
	// ChangePassword re-authenticates with the current password before
	// applying the change.
	ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error
	InitiateReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, email, code, newPassword string) error
	GlobalSignOut(ctx context.Context, accessToken string) error
	DeleteAccount(ctx context.Context, email string) error
	AdminSetPassword(ctx context.Context, email, newPassword string) error
}

// UserRepository is this system's own persisted user records, distinct
// from the identity store. Lookups return (nil, nil) when no record
// exists; errors are reserved for failed calls.
type UserRepository interface {
	// Create persists a new user. It fails with ErrUserExists when the
	// userId is already present.
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Update applies only the supplied fields and returns the stored
	// record after the write.
	Update(ctx context.Context, userID string, fields map[string]any) (*User, error)
	TouchLastLogin(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
	ListBySchool(ctx context.Context, schoolID string) ([]*User, error)
	ListByRole(ctx context.Context, role UserRole) ([]*User, error)
	Search(ctx context.Context, term string, limit int) ([]*User, error)

	SetActive(ctx context.Context, userID string, active bool) (*User, error)
	SystemStats(ctx context.Context) (*SystemStats, error)
	ListWithActivity(ctx context.Context) ([]*UserActivity, error)
	ListSchools(ctx context.Context) ([]*School, error)
	SetSchoolActive(ctx context.Context, schoolID string, active bool) (*School, error)
	ListSchoolTeachers(ctx context.Context, schoolID string) ([]*User, error)
	ListSupportTickets(ctx context.Context) ([]*SupportTicket, error)
	UpdateSupportTicket(ctx context.Context, ticketID, status, assignedTo string) (*SupportTicket, error)
	ListProspectsByState(ctx context.Context, stateCode string) ([]*Prospect, error)
}

// DefaultLogger returns the stdout logger used when nothing better is
// wired in.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
