package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agensilive/agensi_backend/models"
)

type fakeProfileStore struct {
	mu       sync.Mutex
	calls    int
	failures int // number of leading calls that fail
	profile  *models.CreatorProfile
	block    chan struct{} // when set, GetProfile waits on it
}

func (f *fakeProfileStore) GetProfile(ctx context.Context, id string) (*models.CreatorProfile, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, &models.NotFoundError{Message: "profile not found"}
	}
	if f.profile == nil {
		return nil, &models.NotFoundError{Message: "profile not found"}
	}
	return f.profile, nil
}

type fakeRevoker struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRevoker) RevokeSession(ctx context.Context, raw RawSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func activeProfile() *models.CreatorProfile {
	return &models.CreatorProfile{
		ID:         primitive.NewObjectID(),
		Name:       "Dina",
		Role:       models.RoleCreator,
		Status:     models.StatusActive,
		BaseSalary: 2_500_000,
	}
}

func newTestResolver(store ProfileStore, revoker SessionRevoker) *Resolver {
	r := NewResolver(store, revoker)
	r.SetRetry(3, time.Millisecond)
	return r
}

func TestResolveNilSessionIsUnauthenticated(t *testing.T) {
	r := newTestResolver(&fakeProfileStore{profile: activeProfile()}, &fakeRevoker{})

	res, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, res.State)
	assert.Empty(t, res.Reason)
	assert.Nil(t, res.Identity)
	assert.Equal(t, res, r.Current())
}

func TestResolveRetriesThroughTransientFailures(t *testing.T) {
	profile := activeProfile()
	store := &fakeProfileStore{profile: profile, failures: 2}
	r := newTestResolver(store, &fakeRevoker{})

	res, err := r.Resolve(context.Background(), &RawSession{SubjectID: profile.ID.Hex()})
	require.NoError(t, err)
	require.NotNil(t, res.Identity)
	assert.Equal(t, StateResolved, res.State)
	assert.Equal(t, "Dina", res.Identity.Name)
	assert.Equal(t, models.RoleCreator, res.Identity.Role)
	assert.Equal(t, 3, store.calls)
}

func TestResolveSurfacesResolutionErrorAfterExhaustedRetries(t *testing.T) {
	store := &fakeProfileStore{failures: 10}
	r := newTestResolver(store, &fakeRevoker{})

	_, err := r.Resolve(context.Background(), &RawSession{SubjectID: "missing"})
	var rerr *models.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 3, store.calls)
	// The cached identity is untouched: the caller is signed in but
	// unresolved, not a guest.
	assert.Equal(t, StateUnauthenticated, r.Current().State)
}

func TestResolvePendingApprovalForcesSignOutOnce(t *testing.T) {
	profile := activeProfile()
	profile.Status = models.StatusPendingApproval
	revoker := &fakeRevoker{}
	r := newTestResolver(&fakeProfileStore{profile: profile}, revoker)

	res, err := r.Resolve(context.Background(), &RawSession{SubjectID: profile.ID.Hex(), Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, res.State)
	assert.Equal(t, ReasonPendingApproval, res.Reason)
	assert.Nil(t, res.Identity, "role and name must not leak for pending accounts")
	assert.Equal(t, 1, revoker.calls)
}

func TestResolveIsIdempotent(t *testing.T) {
	profile := activeProfile()
	r := newTestResolver(&fakeProfileStore{profile: profile}, &fakeRevoker{})
	raw := &RawSession{SubjectID: profile.ID.Hex()}

	first, err := r.Resolve(context.Background(), raw)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.Identity, second.Identity)
}

func TestResolveRejectsUnknownRoleAtBoundary(t *testing.T) {
	profile := activeProfile()
	profile.Role = "SUPERUSER"
	r := newTestResolver(&fakeProfileStore{profile: profile}, &fakeRevoker{})

	_, err := r.Resolve(context.Background(), &RawSession{SubjectID: profile.ID.Hex()})
	var rerr *models.ResolutionError
	require.ErrorAs(t, err, &rerr)
}

func TestResolveDiscardsSupersededResult(t *testing.T) {
	profile := activeProfile()
	block := make(chan struct{})
	store := &fakeProfileStore{profile: profile, block: block}
	r := newTestResolver(store, &fakeRevoker{})

	done := make(chan Resolution, 1)
	go func() {
		res, _ := r.Resolve(context.Background(), &RawSession{SubjectID: profile.ID.Hex()})
		done <- res
	}()

	// A newer session change arrives while the first resolution is still
	// in flight.
	time.Sleep(10 * time.Millisecond)
	latest, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, latest.State)

	block <- struct{}{}
	stale := <-done
	assert.True(t, stale.Superseded)
	assert.Equal(t, StateUnauthenticated, r.Current().State)
}
