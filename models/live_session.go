// models/live_session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shift values for live sessions
const (
	ShiftMorning   = "MORNING"
	ShiftAfternoon = "AFTERNOON"
)

// LiveSession records one clock-in/clock-out pair. A session with no
// CheckOut is "open"; at most one open session may exist per creator, which
// the data layer enforces with a partial unique index.
type LiveSession struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Date            string             `json:"date" bson:"date"` // YYYY-MM-DD
	Shift           string             `json:"shift" bson:"shift"`
	CheckIn         time.Time          `json:"checkIn" bson:"checkIn"`
	// CheckOut is stored as an explicit null while open so the partial
	// unique index on open sessions can match it.
	CheckOut        *time.Time         `json:"checkOut,omitempty" bson:"checkOut"`
	DurationMinutes *int               `json:"durationMinutes,omitempty" bson:"durationMinutes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// Open reports whether the session has not been clocked out yet.
func (s *LiveSession) Open() bool { return s.CheckOut == nil }

// ValidShift reports whether shift is a known shift tag.
func ValidShift(shift string) bool {
	return shift == ShiftMorning || shift == ShiftAfternoon
}

type ClockInRequest struct {
	Shift string `json:"shift" validate:"required,oneof=MORNING AFTERNOON"`
}

type ClockOutRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}
