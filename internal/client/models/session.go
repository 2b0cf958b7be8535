// Package models defines the client-side domain types: the authenticated
// session, the guest trial quota, analysis payloads and metered actions.
package models

// SessionState names the position of the session in its lifecycle.
// Transitions are owned by the session store; nothing else mutates state.
type SessionState int

const (
	// StateAnonymous is the default: no server-verified identity.
	StateAnonymous SessionState = iota

	// StateAuthenticating is the transient state while a credential check
	// or login round-trip is in flight. It is never a terminal state.
	StateAuthenticating

	// StateAuthenticated means the server has confirmed the identity.
	// Verification is a flag inside the session, not a separate state.
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Session is the server-verified identity and credit ledger as last seen
// by this client. It is a value: the store hands out copies, never the
// struct it guards.
//
// Invariants:
//   - Verified implies Authenticated.
//   - !Authenticated implies Credits == 0.
type Session struct {
	Email         string
	FirstName     string
	LastName      string
	Verified      bool
	Credits       int
	Authenticated bool
}

// Anonymous returns the zero session every lifecycle starts from and
// falls back to on logout or an explicit unauthenticated verdict.
func Anonymous() Session {
	return Session{}
}

// DisplayName returns a human label for prompts and status lines.
func (s Session) DisplayName() string {
	if !s.Authenticated {
		return "guest"
	}
	if s.FirstName != "" {
		return s.FirstName
	}
	return s.Email
}
