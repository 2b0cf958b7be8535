package api

import "errors"

// Sentinel errors returned by Client implementations. They mirror the
// server's verdict taxonomy; callers match them with errors.Is and map
// them to entitlement decisions.
var (
	// ErrUnauthenticated is an explicit 401: the ambient credential is
	// missing, expired or invalid. This is the only error that may clear
	// an established session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPaymentRequired is a 402: the account has fewer credits than the
	// action costs.
	ErrPaymentRequired = errors.New("insufficient credits")

	// ErrVerificationRequired is a 403 carrying the verification marker:
	// the account exists but its email is not verified yet.
	ErrVerificationRequired = errors.New("email verification required")

	// ErrLoginRequired is any other 403, i.e. an anonymous caller whose
	// server-side allowance is spent.
	ErrLoginRequired = errors.New("login required")

	// ErrTimeout means the bounded request deadline elapsed. Metered calls
	// must surface it distinctly and must never be retried automatically.
	ErrTimeout = errors.New("request timed out")

	// ErrUnavailable covers network failures and 5xx responses. Transient:
	// existing local state must be kept.
	ErrUnavailable = errors.New("server unavailable")
)
