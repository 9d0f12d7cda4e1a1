package auth

import (
	"context"

	"github.com/google/uuid"
)

// Admin operations follow an asymmetric failure policy that must be
// preserved: reads fail soft — a broken collaborator yields an empty
// collection or zero-value stats so dashboards keep rendering — while
// writes rethrow so a failed mutation is never silently reported as
// applied.

// Stats returns the platform dashboard aggregate, zero-valued on
// failure.
func (s *Service) Stats(ctx context.Context) *SystemStats {
	stats, err := s.users.SystemStats(ctx)
	if err != nil || stats == nil {
		s.logger.Error("Stats aggregate read failed: %v", err)
		return &SystemStats{SystemUptime: 99.9}
	}
	return stats
}

// Schools lists every licensed school, empty on failure.
func (s *Service) Schools(ctx context.Context) []*School {
	schools, err := s.users.ListSchools(ctx)
	if err != nil {
		s.logger.Error("Schools read failed: %v", err)
		return []*School{}
	}
	return schools
}

// UpdateSchoolStatus toggles a school's active flag. Write: rethrows.
func (s *Service) UpdateSchoolStatus(ctx context.Context, schoolID string, active bool) (*School, error) {
	school, err := s.users.SetSchoolActive(ctx, schoolID, active)
	if err != nil {
		s.logger.Error("UpdateSchoolStatus failed (%s): %v", schoolID, err)
		return nil, err
	}
	return school, nil
}

// UsersWithActivity lists every user with usage counters, empty on
// failure.
func (s *Service) UsersWithActivity(ctx context.Context) []*UserActivity {
	users, err := s.users.ListWithActivity(ctx)
	if err != nil {
		s.logger.Error("UsersWithActivity read failed: %v", err)
		return []*UserActivity{}
	}
	return users
}

// UpdateUserStatus toggles a user's active flag. Write: rethrows.
func (s *Service) UpdateUserStatus(ctx context.Context, userID string, active bool) (*User, error) {
	user, err := s.users.SetActive(ctx, userID, active)
	if err != nil {
		s.logger.Error("UpdateUserStatus failed (%s): %v", userID, err)
		return nil, err
	}
	return user, nil
}

// SupportTickets lists help-desk items, empty on failure.
func (s *Service) SupportTickets(ctx context.Context) []*SupportTicket {
	tickets, err := s.users.ListSupportTickets(ctx)
	if err != nil {
		s.logger.Error("SupportTickets read failed: %v", err)
		return []*SupportTicket{}
	}
	return tickets
}

// UpdateSupportTicket mutates a ticket. Write: rethrows.
func (s *Service) UpdateSupportTicket(ctx context.Context, ticketID, status, assignedTo string) (*SupportTicket, error) {
	ticket, err := s.users.UpdateSupportTicket(ctx, ticketID, status, assignedTo)
	if err != nil {
		s.logger.Error("UpdateSupportTicket failed (%s): %v", ticketID, err)
		return nil, err
	}
	return ticket, nil
}

// CreateSystemAdmin provisions an operator account in both stores.
// Write: rethrows.
func (s *Service) CreateSystemAdmin(ctx context.Context, req CreateSystemAdminRequest) (*User, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	register := RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      RoleSystemAdmin,
	}
	externalID, err := s.identity.CreateAccount(ctx, register)
	if err != nil {
		s.logger.Error("CreateSystemAdmin identity account creation failed: %v", err)
		return nil, err
	}

	now := NowISO()
	user := &User{
		UserID:     uuid.NewString(),
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       RoleSystemAdmin,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
		CognitoSub: externalID,
	}
	return s.users.Create(ctx, user)
}

// SchoolTeachers lists a school's teachers. Admin read, but scoped:
// empty on failure.
func (s *Service) SchoolTeachers(ctx context.Context, schoolID string) []*User {
	teachers, err := s.users.ListSchoolTeachers(ctx, schoolID)
	if err != nil {
		s.logger.Error("SchoolTeachers read failed (%s): %v", schoolID, err)
		return []*User{}
	}
	return teachers
}

// CreateTeacher provisions a teacher for a school with a generated
// temporary password. Write: rethrows.
func (s *Service) CreateTeacher(ctx context.Context, req CreateTeacherRequest) (*User, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	register := RegisterRequest{
		Email:     req.Email,
		Password:  GeneratePassword(12),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      RoleTeacher,
		SchoolID:  req.SchoolID,
	}
	externalID, err := s.identity.CreateAccount(ctx, register)
	if err != nil {
		s.logger.Error("CreateTeacher identity account creation failed: %v", err)
		return nil, err
	}

	now := NowISO()
	user := &User{
		UserID:        uuid.NewString(),
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          RoleTeacher,
		SchoolID:      req.SchoolID,
		IsIndependent: independence(RoleTeacher, req.SchoolID),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
		CognitoSub:    externalID,
	}
	return s.users.Create(ctx, user)
}

// ResetUserPassword overrides a user's password in the identity store.
// Write: rethrows.
func (s *Service) ResetUserPassword(ctx context.Context, userID, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.identity.AdminSetPassword(ctx, user.Email, newPassword); err != nil {
		s.logger.Error("ResetUserPassword failed (%s): %v", userID, err)
		return err
	}
	return nil
}

// ProspectsByState lists sales leads for a state, empty on failure.
func (s *Service) ProspectsByState(ctx context.Context, stateCode string) []*Prospect {
	prospects, err := s.users.ListProspectsByState(ctx, stateCode)
	if err != nil {
		s.logger.Error("ProspectsByState read failed (%s): %v", stateCode, err)
		return []*Prospect{}
	}
	return prospects
}
