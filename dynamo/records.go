package dynamo

import (
	auth "github.com/brightpath/auth-service"
)

// recordKind is the fixed sort-key value for the singleton user item.
// The table's composite key leaves room for per-user event items
// alongside the profile without a second table.
const recordKind = "user"

// userRecord is the persisted shape of a user item. Kept separate from
// the domain type so table attribute names can evolve without touching
// callers.
type userRecord struct {
	UserID        string `dynamodbav:"userId"`
	Kind          string `dynamodbav:"timestamp"`
	Email         string `dynamodbav:"email"`
	FirstName     string `dynamodbav:"firstName"`
	LastName      string `dynamodbav:"lastName"`
	Role          string `dynamodbav:"role"`
	SchoolID      string `dynamodbav:"schoolId,omitempty"`
	StateCode     string `dynamodbav:"stateCode,omitempty"`
	IsIndependent *bool  `dynamodbav:"isIndependent,omitempty"`
	IsActive      bool   `dynamodbav:"isActive"`
	CreatedAt     string `dynamodbav:"createdAt"`
	UpdatedAt     string `dynamodbav:"updatedAt"`
	LastLoginAt   string `dynamodbav:"lastLoginAt,omitempty"`
	CognitoSub    string `dynamodbav:"cognitoSub,omitempty"`
	GoogleID      string `dynamodbav:"googleId,omitempty"`
}

func toRecord(u *auth.User) userRecord {
	return userRecord{
		UserID:        u.UserID,
		Kind:          recordKind,
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

func (r userRecord) toUser() *auth.User {
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

type schoolRecord struct {
	SchoolID           string `dynamodbav:"schoolId"`
	Name               string `dynamodbav:"name"`
	District           string `dynamodbav:"district,omitempty"`
	Address            string `dynamodbav:"address,omitempty"`
	City               string `dynamodbav:"city,omitempty"`
	State              string `dynamodbav:"state,omitempty"`
	ZipCode            string `dynamodbav:"zipCode,omitempty"`
	Phone              string `dynamodbav:"phone,omitempty"`
	Email              string `dynamodbav:"email,omitempty"`
	ContactPerson      string `dynamodbav:"contactPerson,omitempty"`
	LicenseType        string `dynamodbav:"licenseType,omitempty"`
	MaxUsers           int    `dynamodbav:"maxUsers,omitempty"`
	ActiveUsers        int    `dynamodbav:"activeUsers,omitempty"`
	IsActive           bool   `dynamodbav:"isActive"`
	SubscriptionStatus string `dynamodbav:"subscriptionStatus,omitempty"`
	SubscriptionEnd    string `dynamodbav:"subscriptionEndDate,omitempty"`
	CreatedAt          string `dynamodbav:"createdAt,omitempty"`
	UpdatedAt          string `dynamodbav:"updatedAt,omitempty"`
}

func (r schoolRecord) toSchool() *auth.School {
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

type ticketRecord struct {
	TicketID    string `dynamodbav:"ticketId"`
	UserID      string `dynamodbav:"userId,omitempty"`
	UserEmail   string `dynamodbav:"userEmail,omitempty"`
	UserName    string `dynamodbav:"userName,omitempty"`
	SchoolID    string `dynamodbav:"schoolId,omitempty"`
	SchoolName  string `dynamodbav:"schoolName,omitempty"`
	Subject     string `dynamodbav:"subject,omitempty"`
	Description string `dynamodbav:"description,omitempty"`
	Priority    string `dynamodbav:"priority,omitempty"`
	Status      string `dynamodbav:"status"`
	Category    string `dynamodbav:"category,omitempty"`
	AssignedTo  string `dynamodbav:"assignedTo,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt,omitempty"`
	UpdatedAt   string `dynamodbav:"updatedAt,omitempty"`
	ResolvedAt  string `dynamodbav:"resolvedAt,omitempty"`
}

func (r ticketRecord) toTicket() *auth.SupportTicket {
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

type prospectRecord struct {
	ProspectID    string `dynamodbav:"prospectId"`
	SchoolName    string `dynamodbav:"schoolName,omitempty"`
	State         string `dynamodbav:"state"`
	ContactPerson string `dynamodbav:"contactPerson,omitempty"`
	Email         string `dynamodbav:"email,omitempty"`
	Status        string `dynamodbav:"status,omitempty"`
}

func (r prospectRecord) toProspect() *auth.Prospect {
	return &auth.Prospect{
		ProspectID:    r.ProspectID,
		SchoolName:    r.SchoolName,
		State:         r.State,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Status:        r.Status,
	}
}
