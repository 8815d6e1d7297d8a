package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agensilive/agensi_backend/models"
)

// memSessionStore mimics the mongo repository including the partial unique
// index on open sessions: a second open insert for the same creator fails
// with a ConflictError.
type memSessionStore struct {
	sessions map[primitive.ObjectID]*models.LiveSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[primitive.ObjectID]*models.LiveSession)}
}

func (m *memSessionStore) FindOpenByUser(ctx context.Context, userID primitive.ObjectID) (*models.LiveSession, error) {
	for _, s := range m.sessions {
		if s.UserID == userID && s.Open() {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memSessionStore) Insert(ctx context.Context, session *models.LiveSession) (primitive.ObjectID, error) {
	for _, s := range m.sessions {
		if s.UserID == session.UserID && s.Open() {
			return primitive.NilObjectID, &models.ConflictError{Message: "open session already exists"}
		}
	}
	id := primitive.NewObjectID()
	copied := *session
	copied.ID = id
	m.sessions[id] = &copied
	return id, nil
}

func (m *memSessionStore) GetOpen(ctx context.Context, id, userID primitive.ObjectID) (*models.LiveSession, error) {
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID || !s.Open() {
		return nil, &models.NotFoundError{Message: "open session not found"}
	}
	copied := *s
	return &copied, nil
}

func (m *memSessionStore) Close(ctx context.Context, id primitive.ObjectID, checkOut time.Time, durationMinutes int) error {
	s, ok := m.sessions[id]
	if !ok || !s.Open() {
		return &models.NotFoundError{Message: "open session not found"}
	}
	s.CheckOut = &checkOut
	s.DurationMinutes = &durationMinutes
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestClockInOpensSession(t *testing.T) {
	store := newMemSessionStore()
	tracker := NewLiveTracker(store)
	checkIn := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	tracker.SetClock(fixedClock(checkIn))
	creator := primitive.NewObjectID()

	session, err := tracker.ClockIn(context.Background(), creator, models.ShiftMorning)
	require.NoError(t, err)
	assert.False(t, session.ID.IsZero())
	assert.Equal(t, "2025-03-10", session.Date)
	assert.Nil(t, session.CheckOut)
}

func TestClockInSecondSessionConflicts(t *testing.T) {
	store := newMemSessionStore()
	tracker := NewLiveTracker(store)
	creator := primitive.NewObjectID()

	_, err := tracker.ClockIn(context.Background(), creator, models.ShiftMorning)
	require.NoError(t, err)

	_, err = tracker.ClockIn(context.Background(), creator, models.ShiftAfternoon)
	var cerr *models.ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestClockInOtherCreatorUnaffected(t *testing.T) {
	store := newMemSessionStore()
	tracker := NewLiveTracker(store)

	_, err := tracker.ClockIn(context.Background(), primitive.NewObjectID(), models.ShiftMorning)
	require.NoError(t, err)
	_, err = tracker.ClockIn(context.Background(), primitive.NewObjectID(), models.ShiftMorning)
	assert.NoError(t, err)
}

func TestClockInRejectsUnknownShift(t *testing.T) {
	tracker := NewLiveTracker(newMemSessionStore())

	_, err := tracker.ClockIn(context.Background(), primitive.NewObjectID(), "NIGHT")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestClockOutTruncatesToWholeMinutes(t *testing.T) {
	store := newMemSessionStore()
	tracker := NewLiveTracker(store)
	creator := primitive.NewObjectID()

	checkIn := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	tracker.SetClock(fixedClock(checkIn))
	session, err := tracker.ClockIn(context.Background(), creator, models.ShiftMorning)
	require.NoError(t, err)

	tracker.SetClock(fixedClock(checkIn.Add(45*time.Minute + 30*time.Second)))
	minutes, err := tracker.ClockOut(context.Background(), session.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, 45, minutes)

	closed, err := store.GetOpen(context.Background(), session.ID, creator)
	var nerr *models.NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Nil(t, closed)
}

func TestClockOutUnknownSessionNotFound(t *testing.T) {
	tracker := NewLiveTracker(newMemSessionStore())

	_, err := tracker.ClockOut(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	var nerr *models.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestClockOutTwiceNotFound(t *testing.T) {
	store := newMemSessionStore()
	tracker := NewLiveTracker(store)
	creator := primitive.NewObjectID()

	session, err := tracker.ClockIn(context.Background(), creator, models.ShiftMorning)
	require.NoError(t, err)
	_, err = tracker.ClockOut(context.Background(), session.ID, creator)
	require.NoError(t, err)

	_, err = tracker.ClockOut(context.Background(), session.ID, creator)
	var nerr *models.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestClockOutOtherCreatorsSessionNotFound(t *testing.T) {
	store := newMemSessionStore()
	tracker := NewLiveTracker(store)
	owner := primitive.NewObjectID()

	session, err := tracker.ClockIn(context.Background(), owner, models.ShiftMorning)
	require.NoError(t, err)

	_, err = tracker.ClockOut(context.Background(), session.ID, primitive.NewObjectID())
	var nerr *models.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestClockOutBeforeCheckInRejected(t *testing.T) {
	store := newMemSessionStore()
	tracker := NewLiveTracker(store)
	creator := primitive.NewObjectID()

	checkIn := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	tracker.SetClock(fixedClock(checkIn))
	session, err := tracker.ClockIn(context.Background(), creator, models.ShiftMorning)
	require.NoError(t, err)

	tracker.SetClock(fixedClock(checkIn.Add(-time.Minute)))
	_, err = tracker.ClockOut(context.Background(), session.ID, creator)
	var serr *models.InvalidStateError
	require.ErrorAs(t, err, &serr)
}

func TestFindOpenSessionRestoresState(t *testing.T) {
	store := newMemSessionStore()
	tracker := NewLiveTracker(store)
	creator := primitive.NewObjectID()

	open, err := tracker.FindOpenSession(context.Background(), creator)
	require.NoError(t, err)
	assert.Nil(t, open)

	session, err := tracker.ClockIn(context.Background(), creator, models.ShiftAfternoon)
	require.NoError(t, err)

	open, err = tracker.FindOpenSession(context.Background(), creator)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, session.ID, open.ID)
}
