package onboarding

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vendora/sellerctl/internal/models"
	"github.com/vendora/sellerctl/internal/utils"
)

// Transport is the slice of the API client the tracker consumes
type Transport interface {
	OnboardingStatus(ctx context.Context) (*models.OnboardingStatus, error)
	AdvanceOnboarding(ctx context.Context) (*models.OnboardingStatus, error)
	SendVerificationEmail(ctx context.Context) error
	VerifyEmail(ctx context.Context, otp string) error
}

// SessionRefresher re-fetches the seller identity after operations that
// may change seller-level fields such as payout status.
type SessionRefresher interface {
	Refresh(ctx context.Context) (*models.SellerIdentity, error)
}

// DefaultStaleness is how long a fetched status is served without a
// refetch.
const DefaultStaleness = 30 * time.Second

// Tracker is a cached view over the seller's onboarding progress. The
// cache is replaced wholesale on every successful fetch; partial fields
// are never merged, so the displayed flags always come from one
// consistent server response.
type Tracker struct {
	mu        sync.Mutex
	status    *models.OnboardingStatus
	fetchedAt time.Time
	staleness time.Duration
	advancing bool

	transport Transport
	sessions  SessionRefresher
	log       *zap.Logger
	now       func() time.Time
}

// NewTracker creates a tracker backed by the given transport
func NewTracker(transport Transport, sessions SessionRefresher, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		staleness: DefaultStaleness,
		transport: transport,
		sessions:  sessions,
		log:       log,
		now:       time.Now,
	}
}

// Status returns the onboarding status, serving the cached copy while it
// is within the staleness window. When a refetch fails and a previous
// status exists, that previous status is returned with stale=true instead
// of blanking out what the user already sees.
func (t *Tracker) Status(ctx context.Context) (*models.OnboardingStatus, bool, error) {
	t.mu.Lock()
	if t.status != nil && t.now().Sub(t.fetchedAt) < t.staleness {
		status := *t.status
		t.mu.Unlock()
		return &status, false, nil
	}
	t.mu.Unlock()

	status, err := t.fetch(ctx)
	if err != nil {
		t.mu.Lock()
		prev := t.status
		t.mu.Unlock()
		if prev != nil {
			kept := *prev
			return &kept, true, nil
		}
		return nil, false, err
	}
	return status, false, nil
}

// Refresh fetches the status from the server unconditionally
func (t *Tracker) Refresh(ctx context.Context) (*models.OnboardingStatus, error) {
	return t.fetch(ctx)
}

func (t *Tracker) fetch(ctx context.Context) (*models.OnboardingStatus, error) {
	fetched, err := t.transport.OnboardingStatus(ctx)
	if err != nil {
		return nil, err
	}

	t.replace(fetched)

	if advanced := t.maybeAutoAdvance(ctx, fetched); advanced != nil {
		fetched = advanced
	}

	status := *fetched
	return &status, nil
}

// maybeAutoAdvance fires a single stage-advance request when the server
// reports setup complete but the stage has not moved yet. The advancing
// flag keeps overlapping fetches from firing it repeatedly.
func (t *Tracker) maybeAutoAdvance(ctx context.Context, status *models.OnboardingStatus) *models.OnboardingStatus {
	t.mu.Lock()
	shouldAdvance := status.SetupComplete &&
		status.Stage == models.StageProfileIncomplete &&
		!t.advancing
	if shouldAdvance {
		t.advancing = true
	}
	t.mu.Unlock()

	if !shouldAdvance {
		return nil
	}
	defer func() {
		t.mu.Lock()
		t.advancing = false
		t.mu.Unlock()
	}()

	advanced, err := t.Advance(ctx)
	if err != nil {
		t.log.Warn("automatic onboarding advance failed", zap.Error(err))
		return nil
	}
	return advanced
}

// Advance asks the server to recompute the onboarding stage. The cached
// status is replaced wholesale with the response and the session identity
// is refreshed, since seller-level fields may have changed with it.
func (t *Tracker) Advance(ctx context.Context) (*models.OnboardingStatus, error) {
	recomputed, err := t.transport.AdvanceOnboarding(ctx)
	if err != nil {
		return nil, err
	}

	t.replace(recomputed)

	if t.sessions != nil {
		if _, err := t.sessions.Refresh(ctx); err != nil {
			t.log.Warn("session refresh after onboarding advance failed", zap.Error(err))
		}
	}

	status := *recomputed
	return &status, nil
}

// SendVerificationEmail triggers delivery of an email verification code
func (t *Tracker) SendVerificationEmail(ctx context.Context) error {
	return t.transport.SendVerificationEmail(ctx)
}

// VerifyEmail submits an email verification code and refetches the
// status on success so the verification flags reflect server truth.
func (t *Tracker) VerifyEmail(ctx context.Context, code string) error {
	if err := utils.ValidateCode(code); err != nil {
		return err
	}

	if err := t.transport.VerifyEmail(ctx, code); err != nil {
		return err
	}

	if _, err := t.Refresh(ctx); err != nil {
		t.log.Warn("status refresh after email verification failed", zap.Error(err))
	}
	return nil
}

// Invalidate discards the cached status. Called when the seller identity
// is invalidated.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = nil
	t.fetchedAt = time.Time{}
}

// replace installs a status wholesale, never merging fields
func (t *Tracker) replace(status *models.OnboardingStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	installed := *status
	t.status = &installed
	t.fetchedAt = t.now()
}
