package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleStudent can consume assigned content only.
	RoleStudent UserRole = "student"
	// RoleTeacher manages students, optionally tied to a school.
	RoleTeacher UserRole = "teacher"
	// RoleSchoolAdmin administers a single school.
	RoleSchoolAdmin UserRole = "school_admin"
	// RoleAdmin administers the platform.
	RoleAdmin UserRole = "admin"
	// RoleStateAdmin administers every school in a state.
	RoleStateAdmin UserRole = "state_admin"
	// RoleSystemAdmin is the operator tier.
	RoleSystemAdmin UserRole = "system_admin"
)

// User is an account record. UserID is immutable after creation and
// Email is unique across active and inactive users. CognitoSub and
// GoogleID cross-reference the identity store and are never consulted
// for authorization.
type User struct {
	UserID        string   `json:"userId"`
	Email         string   `json:"email"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	Role          UserRole `json:"role"`
	SchoolID      string   `json:"schoolId,omitempty"`
	StateCode     string   `json:"stateCode,omitempty"`
	IsIndependent *bool    `json:"isIndependent,omitempty"`
	IsActive      bool     `json:"isActive"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
	LastLoginAt   string   `json:"lastLoginAt,omitempty"`
	CognitoSub    string   `json:"cognitoSub,omitempty"`
	GoogleID      string   `json:"googleId,omitempty"`
}

// NowISO returns the current UTC time in the ISO-8601 shape every
// timestamp field in the data model uses.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// TokenBundle is the token triple returned inside a success envelope.
// IDToken is the identity store's own ID token and is only populated on
// login; self-issued flows leave it empty.
type TokenBundle struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
}

// AuthData is the payload of a successful auth operation.
type AuthData struct {
	User   *User       `json:"user"`
	Tokens TokenBundle `json:"tokens"`
}

// AuthResponse is the uniform envelope every operation returns.
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *AuthData `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      UserRole `json:"role"`
	SchoolID  string   `json:"schoolId,omitempty"`
}

// Validate checks the request shape before it reaches the orchestrator.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Role, validation.Required, validation.In(
			RoleStudent, RoleTeacher, RoleSchoolAdmin, RoleAdmin, RoleStateAdmin, RoleSystemAdmin,
		)),
	)
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateProfileRequest carries a partial profile update. Nil fields are
// left untouched; a present but empty SchoolID detaches a teacher from
// their school.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	SchoolID  *string `json:"schoolId,omitempty"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty),
		validation.Field(&r.LastName, validation.NilOrNotEmpty),
	)
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// PasswordResetRequest starts the recovery-code flow.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordResetConfirmRequest completes the recovery-code flow.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (r PasswordResetConfirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// RefreshRequest exchanges a refresh token for a fresh pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// CreateSystemAdminRequest provisions an operator account.
type CreateSystemAdminRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

func (r CreateSystemAdminRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// CreateTeacherRequest provisions a teacher on behalf of a school. The
// identity-store account is created with a generated temporary password
// that the teacher resets on first login.
type CreateTeacherRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	SchoolID  string `json:"schoolId,omitempty"`
}

func (r CreateTeacherRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
	)
}

// UpdateStatusRequest toggles a user or school active flag.
type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsActive, validation.NotNil),
	)
}

// UpdateTicketRequest mutates a support ticket.
type UpdateTicketRequest struct {
	Status     string `json:"status"`
	AssignedTo string `json:"assignedTo,omitempty"`
}

func (r UpdateTicketRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			"open", "in_progress", "resolved", "closed",
		)),
	)
}

// ResetPasswordRequest is the admin password override payload.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// School is a licensed institution record.
type School struct {
	SchoolID           string `json:"schoolId"`
	Name               string `json:"name"`
	District           string `json:"district,omitempty"`
	Address            string `json:"address,omitempty"`
	City               string `json:"city,omitempty"`
	State              string `json:"state,omitempty"`
	ZipCode            string `json:"zipCode,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Email              string `json:"email,omitempty"`
	ContactPerson      string `json:"contactPerson,omitempty"`
	LicenseType        string `json:"licenseType"`
	MaxUsers           int    `json:"maxUsers"`
	ActiveUsers        int    `json:"activeUsers"`
	IsActive           bool   `json:"isActive"`
	SubscriptionStatus string `json:"subscriptionStatus"`
	SubscriptionEnd    string `json:"subscriptionEndDate,omitempty"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

// UserActivity is the admin roll-up of a user and their usage counters.
type UserActivity struct {
	UserID           string `json:"userId"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Role             string `json:"role"`
	SchoolID         string `json:"schoolId,omitempty"`
	SchoolName       string `json:"schoolName,omitempty"`
	LastLoginAt      string `json:"lastLoginAt,omitempty"`
	LoginCount       int    `json:"loginCount"`
	CoursesCompleted int    `json:"coursesCompleted"`
	TotalWatchTime   int    `json:"totalWatchTime"`
	IsActive         bool   `json:"isActive"`
	CreatedAt        string `json:"createdAt"`
}

// SystemStats is the platform-wide dashboard aggregate.
type SystemStats struct {
	TotalSchools     int     `json:"totalSchools"`
	TotalUsers       int     `json:"totalUsers"`
	ActiveUsers      int     `json:"activeUsers"`
	TotalCourses     int     `json:"totalCourses"`
	CompletedCourses int     `json:"completedCourses"`
	TotalWatchTime   int     `json:"totalWatchTime"`
	SupportTickets   int     `json:"supportTickets"`
	SystemUptime     float64 `json:"systemUptime"`
}

// SupportTicket is a help-desk item surfaced to admins.
type SupportTicket struct {
	TicketID    string `json:"ticketId"`
	UserID      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	UserName    string `json:"userName"`
	SchoolID    string `json:"schoolId,omitempty"`
	SchoolName  string `json:"schoolName,omitempty"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Category    string `json:"category"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	ResolvedAt  string `json:"resolvedAt,omitempty"`
}

// Prospect is a sales lead record, keyed by state for outreach.
type Prospect struct {
	ProspectID    string `json:"prospectId"`
	SchoolName    string `json:"schoolName"`
	State         string `json:"state"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Email         string `json:"email,omitempty"`
	Status        string `json:"status,omitempty"`
}
