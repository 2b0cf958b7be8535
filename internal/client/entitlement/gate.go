// Package entitlement decides whether a metered action is allowed right
// now. Check is a pure function of its inputs and has no side effects:
// the caller consumes quota or applies the new balance only after the
// gated network call actually succeeds. The gate is advisory UX; the
// server remains the enforcement boundary and its verdict always wins.
package entitlement

import (
	"github.com/tickerlens/tickerlens/internal/client/models"
)

// Decision is the outcome of an entitlement check. Never persisted;
// recomputed on every attempt because balances and quota change between
// attempts.
type Decision int

const (
	Allow Decision = iota
	RequireLogin
	RequirePayment
	RequireVerification
)

func (d Decision) String() string {
	switch d {
	case RequireLogin:
		return "require-login"
	case RequirePayment:
		return "require-payment"
	case RequireVerification:
		return "require-verification"
	default:
		return "allow"
	}
}

// Check combines the session snapshot, the guest quota and the action's
// cost into a decision. Order matters:
//
//  1. authenticated but unverified -> RequireVerification, regardless of
//     balance: verification gates all metered actions;
//  2. authenticated with balance below cost -> RequirePayment;
//  3. authenticated with sufficient balance -> Allow;
//  4. anonymous with at least one trial left -> Allow (guest actions are
//     flat single-trial regardless of the action's declared cost);
//  5. anonymous with no trials left -> RequireLogin.
func Check(sess models.Session, guestRemaining int, action models.Action) Decision {
	if sess.Authenticated {
		if !sess.Verified {
			return RequireVerification
		}
		if sess.Credits < action.Cost() {
			return RequirePayment
		}
		return Allow
	}

	if guestRemaining >= 1 {
		return Allow
	}
	return RequireLogin
}
