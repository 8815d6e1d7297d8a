// services/resolver.go
package services

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/utils"
)

// Resolution states
const (
	StateUnauthenticated = "unauthenticated"
	StateResolved        = "resolved"
)

// ReasonPendingApproval tags an Unauthenticated resolution caused by a
// signed-in but not-yet-approved account.
const ReasonPendingApproval = "pending-approval"

// RawSession is the opaque authenticated session handed to the resolver: the
// subject id from a verified token plus the token itself so the session can
// be revoked.
type RawSession struct {
	SubjectID string
	Token     string
	ExpiresAt time.Time
}

// ResolvedIdentity is the application-level identity derived from a raw
// session.
type ResolvedIdentity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// Resolution is the outcome of resolving one raw session. Superseded marks a
// result that arrived after a newer resolution started; its values must not
// be applied.
type Resolution struct {
	State      string            `json:"state"`
	Reason     string            `json:"reason,omitempty"`
	Identity   *ResolvedIdentity `json:"identity,omitempty"`
	Superseded bool              `json:"-"`
}

// ProfileStore looks up profile rows by id. Absence is reported as a
// NotFoundError.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.CreatorProfile, error)
}

// SessionRevoker force-signs-out a raw session (token blacklist or
// equivalent).
type SessionRevoker interface {
	RevokeSession(ctx context.Context, raw RawSession) error
}

// Resolver turns raw sessions into application identities. Profile lookups
// retry on transient failure because a profile row may lag the signup that
// created it. Only the newest in-flight resolution may update the cached
// current identity; older ones complete but are discarded.
type Resolver struct {
	profiles ProfileStore
	revoker  SessionRevoker
	attempts int
	delay    time.Duration
	logger   *log.Logger

	seq     atomic.Int64
	mu      sync.RWMutex
	current Resolution
}

// NewResolver creates a resolver with the standard retry budget: 3 attempts,
// 500ms apart.
func NewResolver(profiles ProfileStore, revoker SessionRevoker) *Resolver {
	return &Resolver{
		profiles: profiles,
		revoker:  revoker,
		attempts: 3,
		delay:    500 * time.Millisecond,
		logger:   log.New(os.Stdout, "[RESOLVER] ", log.LstdFlags),
		current:  Resolution{State: StateUnauthenticated},
	}
}

// SetRetry overrides the retry budget (shorter delays in tests).
func (r *Resolver) SetRetry(attempts int, delay time.Duration) {
	r.attempts = attempts
	r.delay = delay
}

// Current returns the most recently applied resolution.
func (r *Resolver) Current() Resolution {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Resolve maps a raw session (or its absence) to a Resolution. A nil session
// is not an error: it clears the cached identity and reports
// unauthenticated. Re-resolving the same session yields the same result
// barring backend changes.
func (r *Resolver) Resolve(ctx context.Context, raw *RawSession) (Resolution, error) {
	token := r.seq.Add(1)

	if raw == nil {
		res := Resolution{State: StateUnauthenticated}
		return r.apply(token, res), nil
	}

	var profile *models.CreatorProfile
	err := utils.Retry(ctx, r.attempts, r.delay, func(ctx context.Context) error {
		p, err := r.profiles.GetProfile(ctx, raw.SubjectID)
		if err != nil {
			// "Not found yet" is expected consistency lag right after
			// signup and retries like any transient failure.
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		r.logger.Printf("profile lookup for %s exhausted retries: %v", raw.SubjectID, err)
		return Resolution{}, &models.ResolutionError{Attempts: r.attempts, Err: err}
	}

	if err := profile.Validate(); err != nil {
		return Resolution{}, &models.ResolutionError{Attempts: 1, Err: err}
	}

	if profile.Status == models.StatusPendingApproval {
		// Do not let a half-authenticated session linger; revoke before
		// reporting, and never expose role or name.
		if err := r.revoker.RevokeSession(ctx, *raw); err != nil {
			r.logger.Printf("failed to revoke pending-approval session for %s: %v", raw.SubjectID, err)
		}
		res := Resolution{State: StateUnauthenticated, Reason: ReasonPendingApproval}
		return r.apply(token, res), nil
	}

	res := Resolution{
		State: StateResolved,
		Identity: &ResolvedIdentity{
			ID:     profile.ID.Hex(),
			Name:   profile.Name,
			Role:   profile.Role,
			Status: profile.Status,
		},
	}
	return r.apply(token, res), nil
}

// apply installs the resolution unless a newer one has started since.
func (r *Resolver) apply(token int64, res Resolution) Resolution {
	if r.seq.Load() != token {
		res.Superseded = true
		return res
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq.Load() != token {
		res.Superseded = true
		return res
	}
	r.current = res
	return res
}
