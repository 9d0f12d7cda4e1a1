// Package repository is the local development persistence layer: the
// full user repository backed by SQLite through bun. It exists so the
// service can run end to end with no AWS account, with the same
// behavior contract as the DynamoDB implementation.
package repository

import (
	"context"
	"database/sql"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/brightpath/auth-service"
)

type dbUser struct {
	bun.BaseModel `bun:"table:users"`

	UserID        string `bun:"userId,pk"`
	Email         string `bun:"email,notnull,unique"`
	FirstName     string `bun:"firstName"`
	LastName      string `bun:"lastName"`
	Role          string `bun:"role"`
	SchoolID      string `bun:"schoolId"`
	StateCode     string `bun:"stateCode"`
	IsIndependent *bool  `bun:"isIndependent"`
	IsActive      bool   `bun:"isActive"`
	CreatedAt     string `bun:"createdAt"`
	UpdatedAt     string `bun:"updatedAt"`
	LastLoginAt   string `bun:"lastLoginAt"`
	CognitoSub    string `bun:"cognitoSub"`
	GoogleID      string `bun:"googleId"`
}

func (r dbUser) toUser() *auth.User {
	return &auth.User{
		UserID:        r.UserID,
		Email:         r.Email,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Role:          auth.UserRole(r.Role),
		SchoolID:      r.SchoolID,
		StateCode:     r.StateCode,
		IsIndependent: r.IsIndependent,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		LastLoginAt:   r.LastLoginAt,
		CognitoSub:    r.CognitoSub,
		GoogleID:      r.GoogleID,
	}
}

func fromUser(u *auth.User) *dbUser {
	return &dbUser{
		UserID:        u.UserID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          string(u.Role),
		SchoolID:      u.SchoolID,
		StateCode:     u.StateCode,
		IsIndependent: u.IsIndependent,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLoginAt:   u.LastLoginAt,
		CognitoSub:    u.CognitoSub,
		GoogleID:      u.GoogleID,
	}
}

// userColumns whitelists the fields a partial update may touch. The
// service builds field maps with these exact names.
var userColumns = map[string]bool{
	"email":         true,
	"firstName":     true,
	"lastName":      true,
	"role":          true,
	"schoolId":      true,
	"stateCode":     true,
	"isIndependent": true,
	"isActive":      true,
	"updatedAt":     true,
	"lastLoginAt":   true,
	"cognitoSub":    true,
	"googleId":      true,
}

// Repository implements auth.UserRepository on a bun SQLite handle.
type Repository struct {
	db     *bun.DB
	logger auth.Logger
}

// Open creates the bun handle for a SQLite database file. Use
// "file::memory:?cache=shared" for a throwaway database.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open local database")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func New(db *bun.DB, logger auth.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Init creates the schema if missing. Safe to call on every start.
func (r *Repository) Init(ctx context.Context) error {
	models := []any{
		(*dbUser)(nil),
		(*dbSchool)(nil),
		(*dbTicket)(nil),
		(*dbProspect)(nil),
	}
	for _, model := range models {
		if _, err := r.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create local schema")
		}
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	existing, err := r.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, auth.ErrUserExists
	}
	if _, err := r.db.NewInsert().Model(fromUser(user)).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to insert user")
	}
	return user, nil
}

func (r *Repository) GetByID(ctx context.Context, userID string) (*auth.User, error) {
	record := new(dbUser)
	err := r.db.NewSelect().Model(record).Where("\"userId\" = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read user")
	}
	return record.toUser(), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	record := new(dbUser)
	err := r.db.NewSelect().Model(record).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read user by email")
	}
	return record.toUser(), nil
}

func (r *Repository) Update(ctx context.Context, userID string, fields map[string]any) (*auth.User, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, userID)
	}

	query := r.db.NewUpdate().Model((*dbUser)(nil)).Where("\"userId\" = ?", userID)
	for name, value := range fields {
		if !userColumns[name] {
			return nil, goerrors.New("unknown user field: "+name, goerrors.CategoryBadInput)
		}
		query = query.Set("\""+name+"\" = ?", value)
	}
	if _, err := query.Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update user")
	}
	return r.GetByID(ctx, userID)
}

func (r *Repository) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := r.Update(ctx, userID, map[string]any{
		"lastLoginAt": auth.NowISO(),
		"updatedAt":   auth.NowISO(),
	})
	return err
}

func (r *Repository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.NewDelete().Model((*dbUser)(nil)).Where("\"userId\" = ?", userID).Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete user")
	}
	return nil
}

func (r *Repository) ListBySchool(ctx context.Context, schoolID string) ([]*auth.User, error) {
	return r.selectUsers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("\"schoolId\" = ?", schoolID)
	})
}

func (r *Repository) ListByRole(ctx context.Context, role auth.UserRole) ([]*auth.User, error) {
	return r.selectUsers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("role = ?", string(role))
	})
}

func (r *Repository) Search(ctx context.Context, term string, limit int) ([]*auth.User, error) {
	pattern := "%" + term + "%"
	return r.selectUsers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where(
			"email LIKE ? OR \"firstName\" LIKE ? OR \"lastName\" LIKE ?",
			pattern, pattern, pattern,
		)
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	})
}

func (r *Repository) SetActive(ctx context.Context, userID string, active bool) (*auth.User, error) {
	return r.Update(ctx, userID, map[string]any{
		"isActive":  active,
		"updatedAt": auth.NowISO(),
	})
}

func (r *Repository) selectUsers(ctx context.Context, apply func(*bun.SelectQuery) *bun.SelectQuery) ([]*auth.User, error) {
	var records []dbUser
	if err := apply(r.db.NewSelect().Model(&records)).Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list users")
	}
	users := make([]*auth.User, 0, len(records))
	for _, record := range records {
		users = append(users, record.toUser())
	}
	return users, nil
}

var _ auth.UserRepository = (*Repository)(nil)
