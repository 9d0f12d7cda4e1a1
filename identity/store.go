// Package identity is the local development identity store. Accounts
// live in memory with bcrypt-hashed passwords, and the session tokens
// it hands out are opaque values only GlobalSignOut ever consumes. It
// exists so the service runs end to end without a Cognito pool.
package identity

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/brightpath/auth-service"
)

type account struct {
	externalID   string
	passwordHash []byte
	attrs        map[string]string
}

// Store implements auth.IdentityStore in memory. Safe for concurrent
// use.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*account
	sessions map[string]string
	logger   auth.Logger
}

func New(logger auth.Logger) *Store {
	return &Store{
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
		logger:   logger,
	}
}

func hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return hash, nil
}

func (s *Store) CreateAccount(_ context.Context, req auth.RegisterRequest) (string, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		return "", goerrors.New("account already exists", goerrors.CategoryConflict).
			WithCode(goerrors.CodeConflict)
	}
	externalID := uuid.NewString()
	s.accounts[req.Email] = &account{
		externalID:   externalID,
		passwordHash: hash,
		attrs: map[string]string{
			"given_name":  req.FirstName,
			"family_name": req.LastName,
		},
	}
	return externalID, nil
}

// SeedAccount registers a fixture account, replacing any previous one
// with the same email.
func (s *Store) SeedAccount(email, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{
		externalID:   uuid.NewString(),
		passwordHash: hash,
		attrs:        map[string]string{},
	}
	return nil
}

func (s *Store) Authenticate(_ context.Context, email, password string) (*auth.IdentityTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[email]
	if ok {
		ok = bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) == nil
	}
	if !ok {
		return nil, goerrors.New("invalid email or password", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	token := uuid.NewString()
	s.sessions[token] = email
	return &auth.IdentityTokens{
		AccessToken:  token,
		RefreshToken: uuid.NewString(),
		IDToken:      "",
	}, nil
}

func (s *Store) UpdateAttributes(_ context.Context, email string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok {
		return goerrors.New("account not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}
	for name, value := range attrs {
		acct.attrs[name] = value
	}
	return nil
}

func (s *Store) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	if _, err := s.Authenticate(ctx, email, currentPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email].passwordHash = hash
	return nil
}

// InitiateReset logs the code a real deployment would email out.
func (s *Store) InitiateReset(_ context.Context, email string) error {
	s.mu.RLock()
	_, ok := s.accounts[email]
	s.mu.RUnlock()
	if !ok {
		// Match managed-store behavior: do not reveal which emails
		// have accounts.
		return nil
	}
	s.logger.Info("password reset requested for %s; local store accepts any confirmation code", email)
	return nil
}

// ConfirmReset accepts any non-empty code. The local store has no
// delivery channel to verify against.
func (s *Store) ConfirmReset(_ context.Context, email, code, newPassword string) error {
	if code == "" {
		return goerrors.New("confirmation code required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok {
		return goerrors.New("account not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}
	acct.passwordHash = hash
	return nil
}

func (s *Store) GlobalSignOut(_ context.Context, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.sessions[accessToken]
	if !ok {
		return nil
	}
	for token, owner := range s.sessions {
		if owner == email {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, email)
	for token, owner := range s.sessions {
		if owner == email {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *Store) AdminSetPassword(_ context.Context, email, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok {
		return goerrors.New("account not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}
	acct.passwordHash = hash
	return nil
}

var _ auth.IdentityStore = (*Store)(nil)
