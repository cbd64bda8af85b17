package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vendora/sellerctl/internal/api"
	"github.com/vendora/sellerctl/internal/models"
)

// Fetcher retrieves the identity behind the current transport session
type Fetcher interface {
	CurrentSeller(ctx context.Context) (*models.SellerIdentity, error)
}

// Store is the single source of truth for "who is the currently
// authenticated seller". It is written only on validated negotiation
// outcomes, explicit logout, or a server-confirmed unauthorized response.
type Store struct {
	mu       sync.Mutex
	identity *models.SellerIdentity

	// gen counts authoritative writes. A fetch started at generation N is
	// discarded if anything else wrote the store before it resolved.
	gen      uint64
	inflight *inflightFetch

	fetcher Fetcher
	log     *zap.Logger
}

type inflightFetch struct {
	done     chan struct{}
	identity *models.SellerIdentity
	err      error
}

// NewStore creates a session store backed by the given fetcher
func NewStore(fetcher Fetcher, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{fetcher: fetcher, log: log}
}

// Current returns the cached identity, fetching it first if the cache is
// empty. Concurrent callers share a single in-flight fetch.
func (s *Store) Current(ctx context.Context) (*models.SellerIdentity, error) {
	s.mu.Lock()
	if s.identity != nil {
		identity := *s.identity
		s.mu.Unlock()
		return &identity, nil
	}
	f := s.startFetchLocked()
	s.mu.Unlock()

	return s.await(ctx, f)
}

// Refresh fetches the identity from the server even when a cached entry
// exists. On failure the previous entry is kept; a flaky connection must
// never look like a logout.
func (s *Store) Refresh(ctx context.Context) (*models.SellerIdentity, error) {
	s.mu.Lock()
	f := s.startFetchLocked()
	s.mu.Unlock()

	identity, err := s.await(ctx, f)
	if err != nil {
		s.mu.Lock()
		prev := s.identity
		s.mu.Unlock()
		if prev != nil && !api.IsUnauthorized(err) {
			kept := *prev
			return &kept, nil
		}
		return nil, err
	}
	return identity, nil
}

// startFetchLocked joins the in-flight fetch or begins a new one.
// Callers must hold s.mu.
func (s *Store) startFetchLocked() *inflightFetch {
	if s.inflight != nil {
		return s.inflight
	}

	f := &inflightFetch{done: make(chan struct{})}
	s.inflight = f
	startGen := s.gen

	go func() {
		identity, err := s.fetcher.CurrentSeller(context.Background())

		s.mu.Lock()
		defer s.mu.Unlock()

		roleMismatch := false
		if err == nil {
			if roleErr := identity.ValidateRole(); roleErr != nil {
				s.log.Warn("rejected identity with unexpected role",
					zap.String("role", identity.Role),
					zap.String("email", identity.Email))
				identity, err = nil, roleErr
				roleMismatch = true
			}
		}

		if s.gen == startGen {
			if err == nil {
				s.identity = identity
				s.gen++
			} else if roleMismatch || api.IsUnauthorized(err) {
				// The server no longer vouches for a seller behind this
				// session; whatever was cached must not survive.
				s.identity = nil
				s.gen++
			}
			// Other failures leave whatever was cached untouched.
		}

		f.identity, f.err = identity, err
		if s.inflight == f {
			s.inflight = nil
		}
		close(f.done)
	}()

	return f
}

func (s *Store) await(ctx context.Context, f *inflightFetch) (*models.SellerIdentity, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		identity := *f.identity
		return &identity, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Set stores a validated identity. An identity whose role is not "seller"
// is never stored; the cache is cleared instead.
func (s *Store) Set(identity *models.SellerIdentity) error {
	if err := identity.ValidateRole(); err != nil {
		s.log.Warn("refusing to cache identity with unexpected role",
			zap.String("role", roleOf(identity)))
		s.Clear()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *identity
	s.identity = &stored
	s.gen++
	return nil
}

// Clear drops the cached identity. Safe to call repeatedly.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.gen++
}

// InvalidateOnUnauthorized clears the cache only for server-confirmed
// unauthorized errors. Network and other transient failures keep the
// cached identity intact. Reports whether the cache was cleared.
func (s *Store) InvalidateOnUnauthorized(err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	s.log.Info("session invalidated by unauthorized response")
	s.Clear()
	return true
}

// Cached returns the identity currently in the cache without fetching
func (s *Store) Cached() *models.SellerIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

func roleOf(identity *models.SellerIdentity) string {
	if identity == nil {
		return ""
	}
	return identity.Role
}
