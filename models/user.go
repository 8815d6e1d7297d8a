// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values for profiles
const (
	RoleCreator  = "CREATOR"
	RoleAdmin    = "ADMIN"
	RoleInvestor = "INVESTOR"
)

// Status values for profiles
const (
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusActive          = "ACTIVE"
	StatusPaused          = "PAUSED"
	StatusArchived        = "ARCHIVED"
)

// CreatorProfile is the agency-side record for every account. Creators sign
// up as PENDING_APPROVAL and are activated by an admin; profiles are archived
// rather than deleted.
type CreatorProfile struct {
	ID               primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Email            string              `json:"email" bson:"email"`
	Password         string              `json:"password,omitempty" bson:"password"`
	Name             string              `json:"name" bson:"name"`
	Role             string              `json:"role" bson:"role"`
	Status           string              `json:"status" bson:"status"`
	BaseSalary       float64             `json:"baseSalary" bson:"baseSalary"`
	HourlyRate       *float64            `json:"hourlyRate,omitempty" bson:"hourlyRate,omitempty"`
	CommissionRuleID *primitive.ObjectID `json:"commissionRuleId,omitempty" bson:"commissionRuleId,omitempty"`
	FCMToken         string              `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	JoinedAt         time.Time           `json:"joinedAt" bson:"joinedAt"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// ValidRole reports whether role is one of the known role tags.
func ValidRole(role string) bool {
	switch role {
	case RoleCreator, RoleAdmin, RoleInvestor:
		return true
	}
	return false
}

// ValidStatus reports whether status is one of the known status tags.
func ValidStatus(status string) bool {
	switch status {
	case StatusPendingApproval, StatusActive, StatusPaused, StatusArchived:
		return true
	}
	return false
}

// Validate checks a raw profile row at the boundary so internal logic never
// handles an unvalidated shape.
func (p *CreatorProfile) Validate() error {
	if !ValidRole(p.Role) {
		return &ValidationError{Field: "role", Message: "unknown role: " + p.Role}
	}
	if !ValidStatus(p.Status) {
		return &ValidationError{Field: "status", Message: "unknown status: " + p.Status}
	}
	if p.BaseSalary < 0 {
		return &ValidationError{Field: "baseSalary", Message: "base salary must not be negative"}
	}
	return nil
}

// SignupRequest is the payload for creator self-registration.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateCreatorRequest carries the admin-editable payroll fields. Pointers
// distinguish "not sent" from zero.
type UpdateCreatorRequest struct {
	Name             *string  `json:"name,omitempty"`
	BaseSalary       *float64 `json:"baseSalary,omitempty"`
	HourlyRate       *float64 `json:"hourlyRate,omitempty"`
	CommissionRuleID *string  `json:"commissionRuleId,omitempty"`
}

// Response is the common API envelope.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
