// Package api implements the HTTP client for the TickerLens analysis
// backend. The authentication credential is an HTTP-only cookie managed
// entirely by the cookie jar; the client never reads or writes it, and
// derives all authentication state through CurrentUser.
package api

import (
	"context"
	"encoding/json"
)

// Account is the identity and credit ledger reported by GET /users/me.
type Account struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Verified  bool   `json:"is_verified"`
	Credits   int    `json:"credits"`
}

// LoginResult is the outcome of POST /login. The server is allowed to omit
// the verification flag from the login response; in that case VerifiedKnown
// is false and the session store must complete the login with a CurrentUser
// round-trip before treating it as final.
type LoginResult struct {
	Account       Account
	VerifiedKnown bool
}

// AnalysisResult carries one analysis response. Body is the full opaque
// JSON document; CreditsLeft is the authoritative balance extracted from
// it when the server included one (it never does for anonymous callers).
type AnalysisResult struct {
	Ticker      string
	Body        json.RawMessage
	CreditsLeft *int
}

// LicenseResult is the outcome of POST /verify-license.
type LicenseResult struct {
	Valid   bool `json:"valid"`
	Credits int  `json:"credits"`
}

// Client defines the remote operations the TickerLens client performs.
//
// Contract:
//   - CurrentUser: credential check; 401 maps to ErrUnauthenticated,
//     network trouble to ErrUnavailable/ErrTimeout.
//   - Login: establishes the session cookie.
//   - Logout: best-effort server-side invalidation.
//   - Analyze/Compare: metered; 402/403 map to the sentinel errors above.
//   - VerifyLicense: redeems a license key for credits.
//
// All methods must honor context cancellation and deadlines.
type Client interface {
	CurrentUser(ctx context.Context) (*Account, error)
	Login(ctx context.Context, email string, password []byte) (*LoginResult, error)
	Logout(ctx context.Context) error
	Analyze(ctx context.Context, ticker string) (*AnalysisResult, error)
	Compare(ctx context.Context, tickerA, tickerB string) (*AnalysisResult, error)
	VerifyLicense(ctx context.Context, key string) (*LicenseResult, error)
	Close() error
}
