// services/live_tracker.go
package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agensilive/agensi_backend/models"
)

// SessionStore is the persistence contract for live sessions. Insert must be
// backed by a storage-level uniqueness guarantee on open sessions per
// creator (partial unique index) and report a violation as a ConflictError,
// because checking then inserting leaves a race window between two tabs.
type SessionStore interface {
	FindOpenByUser(ctx context.Context, userID primitive.ObjectID) (*models.LiveSession, error)
	Insert(ctx context.Context, session *models.LiveSession) (primitive.ObjectID, error)
	GetOpen(ctx context.Context, id, userID primitive.ObjectID) (*models.LiveSession, error)
	Close(ctx context.Context, id primitive.ObjectID, checkOut time.Time, durationMinutes int) error
}

// LiveTracker enforces the clock-in/clock-out state machine: Idle -> Live ->
// Idle, with at most one open session per creator.
type LiveTracker struct {
	store SessionStore
	now   func() time.Time
}

func NewLiveTracker(store SessionStore) *LiveTracker {
	return &LiveTracker{store: store, now: time.Now}
}

// SetClock overrides the clock (tests).
func (t *LiveTracker) SetClock(now func() time.Time) { t.now = now }

// ClockIn opens a session for the creator. A second open session is a
// ConflictError; the pre-check gives a clear message, the store's unique
// index closes the race.
func (t *LiveTracker) ClockIn(ctx context.Context, userID primitive.ObjectID, shift string) (*models.LiveSession, error) {
	if !models.ValidShift(shift) {
		return nil, &models.ValidationError{Field: "shift", Message: "unknown shift: " + shift}
	}

	open, err := t.store.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, &models.ConflictError{Message: "already live: an open session exists for this creator"}
	}

	now := t.now()
	session := &models.LiveSession{
		UserID:    userID,
		Date:      now.Format("2006-01-02"),
		Shift:     shift,
		CheckIn:   now,
		CreatedAt: now,
	}
	id, err := t.store.Insert(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

// ClockOut closes the creator's open session and returns the whole-minute
// duration, truncated.
func (t *LiveTracker) ClockOut(ctx context.Context, sessionID, userID primitive.ObjectID) (int, error) {
	session, err := t.store.GetOpen(ctx, sessionID, userID)
	if err != nil {
		return 0, err
	}

	now := t.now()
	if now.Before(session.CheckIn) {
		return 0, &models.InvalidStateError{Message: "clock-out time precedes clock-in"}
	}
	minutes := int(now.Sub(session.CheckIn) / time.Minute)

	if err := t.store.Close(ctx, sessionID, now, minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}

// FindOpenSession restores in-progress state after a reload; it is a read,
// not a transition.
func (t *LiveTracker) FindOpenSession(ctx context.Context, userID primitive.ObjectID) (*models.LiveSession, error) {
	return t.store.FindOpenByUser(ctx, userID)
}
