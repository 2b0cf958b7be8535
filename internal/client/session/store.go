// Package session owns the authenticated identity and credit balance.
// The store is the single source of truth for "am I logged in": it is
// reconciled against the server through the API client and never trusts
// state carried over from a previous run.
//
// State machine:
//
//	Anonymous -> Authenticating -> Authenticated(verified|unverified)
//
// Authenticated drops back to Anonymous only on explicit logout or an
// explicit unauthenticated verdict from the server. A transient network
// failure never clears an established session: briefly trusting stale
// data is a better failure mode than logging the user out over a blip.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tickerlens/tickerlens/internal/client/api"
	"github.com/tickerlens/tickerlens/internal/client/models"
	"github.com/tickerlens/tickerlens/internal/logging"
)

// Store is the session state machine. Safe for concurrent use.
type Store struct {
	client api.Client
	log    logging.Logger

	mu      sync.RWMutex
	state   models.SessionState
	session models.Session
}

// NewStore builds a Store starting in the Anonymous state.
func NewStore(client api.Client, log logging.Logger) *Store {
	return &Store{
		client:  client,
		log:     log,
		state:   models.StateAnonymous,
		session: models.Anonymous(),
	}
}

// Snapshot returns a copy of the current session for gate evaluation and
// display. The copy goes stale the moment it is taken; re-snapshot on
// every action attempt.
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// State reports the lifecycle state.
func (s *Store) State() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Validate performs the credential check against the server using the
// ambient cookie. Called at application start and on demand.
//
// Outcomes:
//   - server confirms the identity: session overwritten with the fresh
//     identity, verification flag and balance;
//   - explicit unauthenticated verdict: session reset to Anonymous, nil
//     error (the check itself succeeded);
//   - transient failure: the established session is left untouched and
//     the error is returned.
func (s *Store) Validate(ctx context.Context) (models.Session, error) {
	prevState, prevSession := s.begin()

	acct, err := s.client.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			s.reset()
			return models.Anonymous(), nil
		}
		s.restore(prevState, prevSession)
		return prevSession, fmt.Errorf("validate session: %w", err)
	}

	return s.apply(acct), nil
}

// Login authenticates with email and password. If the login response did
// not include the verification flag, one extra Validate round-trip is
// required before the session is considered final: a partially populated
// session is never a terminal state, so a failed follow-up check resets
// to Anonymous.
func (s *Store) Login(ctx context.Context, email string, password []byte) (models.Session, error) {
	prevState, prevSession := s.begin()

	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.restore(prevState, prevSession)
		return prevSession, fmt.Errorf("login: %w", err)
	}

	if !res.VerifiedKnown {
		acct, err := s.client.CurrentUser(ctx)
		if err != nil {
			s.log.Warn(ctx, "could not finalize login, resetting to anonymous", "err", err)
			s.reset()
			return models.Anonymous(), fmt.Errorf("finalize login: %w", err)
		}
		return s.apply(acct), nil
	}

	return s.apply(&res.Account), nil
}

// Logout requests server-side invalidation, then unconditionally resets
// local state. A failed request is logged and swallowed: logout must never
// leave a stuck "logged in" client after the cookie is already gone.
func (s *Store) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.log.Warn(ctx, "server logout failed, clearing local session anyway", "err", err)
	}
	s.reset()
}

// SetCreditBalance overwrites the balance with an authoritative
// server-reported value. Ignored while anonymous (an anonymous session
// has no balance) and clamped at zero.
func (s *Store) SetCreditBalance(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.Authenticated {
		return
	}
	if n < 0 {
		n = 0
	}
	s.session.Credits = n
}

// Invalidate resets to Anonymous. Used when a metered call comes back 401:
// the server's verdict corrects local state.
func (s *Store) Invalidate() {
	s.reset()
}

func (s *Store) begin() (models.SessionState, models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prevState, prevSession := s.state, s.session
	s.state = models.StateAuthenticating
	return prevState, prevSession
}

func (s *Store) restore(state models.SessionState, sess models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.session = sess
}

func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.StateAnonymous
	s.session = models.Anonymous()
}

func (s *Store) apply(acct *api.Account) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	credits := acct.Credits
	if credits < 0 {
		credits = 0
	}
	s.session = models.Session{
		Email:         acct.Email,
		FirstName:     acct.FirstName,
		LastName:      acct.LastName,
		Verified:      acct.Verified,
		Credits:       credits,
		Authenticated: true,
	}
	s.state = models.StateAuthenticated
	return s.session
}
