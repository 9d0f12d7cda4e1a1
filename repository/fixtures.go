package repository

import (
	"context"

	goerrors "github.com/goliatone/go-errors"

	auth "github.com/brightpath/auth-service"
)

// Fixtures is the demo data the local harness starts with. Everything
// here flows through the same repository interface the production
// adapter implements, so handlers never special-case demo data.
type Fixtures struct {
	Users     []*auth.User
	Passwords map[string]string
	Schools   []*dbSchool
	Tickets   []*dbTicket
	Prospects []*dbProspect
}

// DefaultFixtures returns a small, self-consistent data set: two
// schools, a teacher in each flavor (school-bound and independent),
// a student and an admin, plus open tickets and prospects.
func DefaultFixtures() Fixtures {
	now := auth.NowISO()
	independent := true
	bound := false

	return Fixtures{
		Users: []*auth.User{
			{
				UserID:    "usr-admin-1",
				Email:     "admin@brightpath.local",
				FirstName: "Ada",
				LastName:  "Admin",
				Role:      auth.RoleAdmin,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			},
			{
				UserID:        "usr-teacher-1",
				Email:         "teacher@lincoln.brightpath.local",
				FirstName:     "Tom",
				LastName:      "Teacher",
				Role:          auth.RoleTeacher,
				SchoolID:      "sch-lincoln",
				IsIndependent: &bound,
				IsActive:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
			{
				UserID:        "usr-teacher-2",
				Email:         "indie@brightpath.local",
				FirstName:     "Ingrid",
				LastName:      "Indie",
				Role:          auth.RoleTeacher,
				IsIndependent: &independent,
				IsActive:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
			{
				UserID:    "usr-student-1",
				Email:     "student@lincoln.brightpath.local",
				FirstName: "Sam",
				LastName:  "Student",
				Role:      auth.RoleStudent,
				SchoolID:  "sch-lincoln",
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		Passwords: map[string]string{
			"admin@brightpath.local":           "admin-password",
			"teacher@lincoln.brightpath.local": "teacher-password",
			"indie@brightpath.local":           "indie-password",
			"student@lincoln.brightpath.local": "student-password",
		},
		Schools: []*dbSchool{
			{
				SchoolID:           "sch-lincoln",
				Name:               "Lincoln Elementary",
				District:           "Springfield USD",
				City:               "Springfield",
				State:              "IL",
				ContactPerson:      "Pat Principal",
				LicenseType:        "district",
				MaxUsers:           500,
				ActiveUsers:        2,
				IsActive:           true,
				SubscriptionStatus: "active",
				CreatedAt:          now,
				UpdatedAt:          now,
			},
			{
				SchoolID:           "sch-roosevelt",
				Name:               "Roosevelt Middle School",
				District:           "Springfield USD",
				City:               "Springfield",
				State:              "IL",
				LicenseType:        "school",
				MaxUsers:           200,
				IsActive:           true,
				SubscriptionStatus: "trial",
				CreatedAt:          now,
				UpdatedAt:          now,
			},
		},
		Tickets: []*dbTicket{
			{
				TicketID:    "tkt-1001",
				UserID:      "usr-teacher-1",
				UserEmail:   "teacher@lincoln.brightpath.local",
				UserName:    "Tom Teacher",
				SchoolID:    "sch-lincoln",
				SchoolName:  "Lincoln Elementary",
				Subject:     "Cannot add students to roster",
				Description: "The add-student form errors out for my third period class.",
				Priority:    "high",
				Status:      "open",
				Category:    "roster",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				TicketID:    "tkt-1002",
				UserID:      "usr-teacher-2",
				UserEmail:   "indie@brightpath.local",
				UserName:    "Ingrid Indie",
				Subject:     "Billing question",
				Description: "Was charged twice for the independent plan in March.",
				Priority:    "medium",
				Status:      "in_progress",
				Category:    "billing",
				AssignedTo:  "support@brightpath.local",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		},
		Prospects: []*dbProspect{
			{
				ProspectID:    "prs-il-1",
				SchoolName:    "Washington High",
				State:         "IL",
				ContactPerson: "Dana Dean",
				Email:         "ddean@washington.example.edu",
				Status:        "contacted",
			},
			{
				ProspectID: "prs-il-2",
				SchoolName: "Adams Academy",
				State:      "IL",
				Status:     "new",
			},
			{
				ProspectID:    "prs-ca-1",
				SchoolName:    "Pacific Charter",
				State:         "CA",
				ContactPerson: "Casey Chair",
				Status:        "new",
			},
		},
	}
}

// Seed loads the fixture rows, skipping anything already present so
// restarts against a persistent database file stay idempotent.
func (r *Repository) Seed(ctx context.Context, fixtures Fixtures) error {
	for _, user := range fixtures.Users {
		existing, err := r.GetByID(ctx, user.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := r.Create(ctx, user); err != nil {
			return err
		}
	}

	if len(fixtures.Schools) > 0 {
		_, err := r.db.NewInsert().Model(&fixtures.Schools).
			On("CONFLICT DO NOTHING").Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to seed schools")
		}
	}
	if len(fixtures.Tickets) > 0 {
		_, err := r.db.NewInsert().Model(&fixtures.Tickets).
			On("CONFLICT DO NOTHING").Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to seed tickets")
		}
	}
	if len(fixtures.Prospects) > 0 {
		_, err := r.db.NewInsert().Model(&fixtures.Prospects).
			On("CONFLICT DO NOTHING").Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to seed prospects")
		}
	}
	return nil
}
