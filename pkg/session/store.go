// Package session implements the single authoritative in-memory holder of the
// current session and its derived profile/account. Its lifecycle is bound to
// application start/stop; UI-facing callers read copies and must tolerate
// staleness between a mutating operation and the subsequent refresh.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/provider/identity"
	"github.com/google/uuid"
)

// Loader resolves a user identity to exactly one profile and one account.
type Loader interface {
	Load(ctx context.Context, userID uuid.UUID) (*domain.Profile, *domain.Account, error)
}

// Notifier raises a user-visible notification. Profile/account load failures
// after a successful sign-in are reported here; the session itself stays valid.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// LogNotifier is the default Notifier: it only logs.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, message string) {
	n.Logger.Warn("user notification", "message", message)
}

// Store holds the session state. The loader and the refresh coordinator are
// the only writers; readers receive copies.
type Store struct {
	provider identity.Provider
	loader   Loader
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	session *identity.Session
	profile *domain.Profile
	account *domain.Account
	// gen increments on every session change; async results carrying an older
	// generation are discarded instead of clobbering newer state.
	gen uint64

	unsubscribe func()
}

// New creates a stopped Store. Call Start to subscribe and load the persisted
// session.
func New(
	provider identity.Provider,
	loader Loader,
	notifier Notifier,
	logger *slog.Logger,
) *Store {
	return &Store{
		provider: provider,
		loader:   loader,
		notifier: notifier,
		logger:   logger,
	}
}

// Start subscribes to session change notifications and then fetches the
// currently persisted session once. Subscribing first guarantees an early
// change event cannot be dropped; state application is idempotent so either
// arrival order yields the same final state.
func (s *Store) Start(ctx context.Context) error {
	s.unsubscribe = s.provider.OnAuthStateChange(func(ev identity.AuthEvent, sess *identity.Session) {
		s.logger.Debug("auth state changed", "event", ev)
		s.apply(ctx, sess)
	})

	sess, err := s.provider.GetSession(ctx)
	if err != nil {
		return err
	}
	s.apply(ctx, sess)
	return nil
}

// Stop unsubscribes from session change notifications.
func (s *Store) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// apply installs a new session and kicks off profile/account loading for a
// signed-in user, or clears derived state on sign-out. Applying the same
// session twice is harmless.
func (s *Store) apply(ctx context.Context, sess *identity.Session) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.session = sess
	if sess == nil {
		s.profile = nil
		s.account = nil
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	profile, account, err := s.loader.Load(ctx, sess.UserID)
	if err != nil {
		// The session remains valid; profile/account stay nil until a manual
		// refresh succeeds.
		s.logger.Error("failed to load user data", "userID", sess.UserID, "error", err)
		s.notifier.Notify(ctx, "Error loading your data. Please try again.")
		return
	}
	s.mu.Lock()
	if gen == s.gen {
		s.profile = profile
		s.account = account
	}
	s.mu.Unlock()
}

// Session returns a copy of the current session, or nil when signed out.
func (s *Store) Session() *identity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Profile returns a copy of the loaded profile, or nil.
func (s *Store) Profile() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	cp := *s.profile
	return &cp
}

// Account returns a copy of the cached account, or nil. The value can be stale
// between a successful remote transfer and the subsequent refresh completing.
func (s *Store) Account() *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil
	}
	cp := *s.account
	return &cp
}

// Generation returns a token identifying the current session epoch. Callers
// performing an async re-fetch capture it first and pass it to ReplaceAccount
// so a completed-but-irrelevant response is provably discarded.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// ReplaceAccount swaps the cached account wholesale if gen still matches the
// current session epoch. It reports whether the replacement was applied.
func (s *Store) ReplaceAccount(gen uint64, account *domain.Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding stale account update", "gen", gen, "current", s.gen)
		return false
	}
	s.account = account
	return true
}
