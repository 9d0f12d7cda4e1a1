package repository

import (
	"context"
	"database/sql"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	auth "github.com/brightpath/auth-service"
)

type dbSchool struct {
	bun.BaseModel `bun:"table:schools"`

	SchoolID           string `bun:"schoolId,pk"`
	Name               string `bun:"name"`
	District           string `bun:"district"`
	Address            string `bun:"address"`
	City               string `bun:"city"`
	State              string `bun:"state"`
	ZipCode            string `bun:"zipCode"`
	Phone              string `bun:"phone"`
	Email              string `bun:"email"`
	ContactPerson      string `bun:"contactPerson"`
	LicenseType        string `bun:"licenseType"`
	MaxUsers           int    `bun:"maxUsers"`
	ActiveUsers        int    `bun:"activeUsers"`
	IsActive           bool   `bun:"isActive"`
	SubscriptionStatus string `bun:"subscriptionStatus"`
	SubscriptionEnd    string `bun:"subscriptionEndDate"`
	CreatedAt          string `bun:"createdAt"`
	UpdatedAt          string `bun:"updatedAt"`
}

func (r dbSchool) toSchool() *auth.School {
	return &auth.School{
		SchoolID:           r.SchoolID,
		Name:               r.Name,
		District:           r.District,
		Address:            r.Address,
		City:               r.City,
		State:              r.State,
		ZipCode:            r.ZipCode,
		Phone:              r.Phone,
		Email:              r.Email,
		ContactPerson:      r.ContactPerson,
		LicenseType:        r.LicenseType,
		MaxUsers:           r.MaxUsers,
		ActiveUsers:        r.ActiveUsers,
		IsActive:           r.IsActive,
		SubscriptionStatus: r.SubscriptionStatus,
		SubscriptionEnd:    r.SubscriptionEnd,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type dbTicket struct {
	bun.BaseModel `bun:"table:support_tickets"`

	TicketID    string `bun:"ticketId,pk"`
	UserID      string `bun:"userId"`
	UserEmail   string `bun:"userEmail"`
	UserName    string `bun:"userName"`
	SchoolID    string `bun:"schoolId"`
	SchoolName  string `bun:"schoolName"`
	Subject     string `bun:"subject"`
	Description string `bun:"description"`
	Priority    string `bun:"priority"`
	Status      string `bun:"status"`
	Category    string `bun:"category"`
	AssignedTo  string `bun:"assignedTo"`
	CreatedAt   string `bun:"createdAt"`
	UpdatedAt   string `bun:"updatedAt"`
	ResolvedAt  string `bun:"resolvedAt"`
}

func (r dbTicket) toTicket() *auth.SupportTicket {
	return &auth.SupportTicket{
		TicketID:    r.TicketID,
		UserID:      r.UserID,
		UserEmail:   r.UserEmail,
		UserName:    r.UserName,
		SchoolID:    r.SchoolID,
		SchoolName:  r.SchoolName,
		Subject:     r.Subject,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Category:    r.Category,
		AssignedTo:  r.AssignedTo,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ResolvedAt:  r.ResolvedAt,
	}
}

type dbProspect struct {
	bun.BaseModel `bun:"table:prospects"`

	ProspectID    string `bun:"prospectId,pk"`
	SchoolName    string `bun:"schoolName"`
	State         string `bun:"state"`
	ContactPerson string `bun:"contactPerson"`
	Email         string `bun:"email"`
	Status        string `bun:"status"`
}

func (r dbProspect) toProspect() *auth.Prospect {
	return &auth.Prospect{
		ProspectID:    r.ProspectID,
		SchoolName:    r.SchoolName,
		State:         r.State,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Status:        r.Status,
	}
}

func (r *Repository) SystemStats(ctx context.Context) (*auth.SystemStats, error) {
	totalUsers, err := r.db.NewSelect().Model((*dbUser)(nil)).Count(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to count users")
	}
	activeUsers, err := r.db.NewSelect().Model((*dbUser)(nil)).
		Where("\"isActive\" = ?", true).Count(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to count active users")
	}
	totalSchools, err := r.db.NewSelect().Model((*dbSchool)(nil)).Count(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to count schools")
	}
	openTickets, err := r.db.NewSelect().Model((*dbTicket)(nil)).
		Where("status IN (?)", bun.In([]string{"open", "in_progress"})).Count(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to count tickets")
	}

	return &auth.SystemStats{
		TotalSchools:   totalSchools,
		TotalUsers:     totalUsers,
		ActiveUsers:    activeUsers,
		SupportTickets: openTickets,
		SystemUptime:   99.9,
	}, nil
}

func (r *Repository) ListWithActivity(ctx context.Context) ([]*auth.UserActivity, error) {
	users, err := r.selectUsers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery { return q })
	if err != nil {
		return nil, err
	}
	schools, err := r.ListSchools(ctx)
	if err != nil {
		return nil, err
	}
	schoolNames := make(map[string]string, len(schools))
	for _, school := range schools {
		schoolNames[school.SchoolID] = school.Name
	}

	activity := make([]*auth.UserActivity, 0, len(users))
	for _, user := range users {
		activity = append(activity, &auth.UserActivity{
			UserID:      user.UserID,
			Email:       user.Email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Role:        string(user.Role),
			SchoolID:    user.SchoolID,
			SchoolName:  schoolNames[user.SchoolID],
			LastLoginAt: user.LastLoginAt,
			IsActive:    user.IsActive,
			CreatedAt:   user.CreatedAt,
		})
	}
	return activity, nil
}

func (r *Repository) ListSchools(ctx context.Context) ([]*auth.School, error) {
	var records []dbSchool
	if err := r.db.NewSelect().Model(&records).Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list schools")
	}
	schools := make([]*auth.School, 0, len(records))
	for _, record := range records {
		schools = append(schools, record.toSchool())
	}
	return schools, nil
}

func (r *Repository) SetSchoolActive(ctx context.Context, schoolID string, active bool) (*auth.School, error) {
	record := new(dbSchool)
	err := r.db.NewSelect().Model(record).Where("\"schoolId\" = ?", schoolID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerrors.New("school not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read school")
	}

	record.IsActive = active
	record.UpdatedAt = auth.NowISO()
	if _, err := r.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update school")
	}
	return record.toSchool(), nil
}

func (r *Repository) ListSchoolTeachers(ctx context.Context, schoolID string) ([]*auth.User, error) {
	return r.selectUsers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("\"schoolId\" = ?", schoolID).Where("role = ?", string(auth.RoleTeacher))
	})
}

func (r *Repository) ListSupportTickets(ctx context.Context) ([]*auth.SupportTicket, error) {
	var records []dbTicket
	if err := r.db.NewSelect().Model(&records).Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list tickets")
	}
	tickets := make([]*auth.SupportTicket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, record.toTicket())
	}
	return tickets, nil
}

func (r *Repository) UpdateSupportTicket(ctx context.Context, ticketID, status, assignedTo string) (*auth.SupportTicket, error) {
	record := new(dbTicket)
	err := r.db.NewSelect().Model(record).Where("\"ticketId\" = ?", ticketID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerrors.New("support ticket not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read ticket")
	}

	record.Status = status
	record.UpdatedAt = auth.NowISO()
	if assignedTo != "" {
		record.AssignedTo = assignedTo
	}
	if status == "resolved" {
		record.ResolvedAt = record.UpdatedAt
	}
	if _, err := r.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update ticket")
	}
	return record.toTicket(), nil
}

func (r *Repository) ListProspectsByState(ctx context.Context, stateCode string) ([]*auth.Prospect, error) {
	var records []dbProspect
	err := r.db.NewSelect().Model(&records).Where("state = ?", stateCode).Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list prospects")
	}
	prospects := make([]*auth.Prospect, 0, len(records))
	for _, record := range records {
		prospects = append(prospects, record.toProspect())
	}
	return prospects, nil
}
