// Package services contains the application services of the TickerLens
// client: the metered-analysis orchestration and the credit ledger sync.
package services

import (
	"context"
	"fmt"

	"github.com/tickerlens/tickerlens/internal/logging"
)

// balanceSetter is the slice of the session store the ledger writes to.
type balanceSetter interface {
	SetCreditBalance(n int)
}

// guestConsumer is the slice of the quota tracker the ledger consumes from.
type guestConsumer interface {
	Consume(ctx context.Context) (bool, error)
}

// LedgerSync applies the authoritative outcome of a successful metered
// call: for authenticated users the server-reported balance replaces any
// local guess; for guests the local trial counter is decremented exactly
// once. Nothing else writes the credit balance.
type LedgerSync struct {
	session balanceSetter
	quota   guestConsumer
	log     logging.Logger
}

// NewLedgerSync builds a LedgerSync.
func NewLedgerSync(session balanceSetter, quota guestConsumer, log logging.Logger) *LedgerSync {
	return &LedgerSync{session: session, quota: quota, log: log}
}

// Apply overwrites the session balance with the server-reported value.
// No merging with whatever the client believed before the call.
func (l *LedgerSync) Apply(ctx context.Context, newBalance int) {
	l.log.Debug(ctx, "applying authoritative balance", "credits_left", newBalance)
	l.session.SetCreditBalance(newBalance)
}

// ConsumeGuest burns one guest trial. Called exactly once per successful
// anonymous metered call, never per attempt. A false consume here means
// another process spent the last trial mid-flight; the action already
// succeeded server-side, so it is logged, not failed.
func (l *LedgerSync) ConsumeGuest(ctx context.Context) error {
	ok, err := l.quota.Consume(ctx)
	if err != nil {
		return fmt.Errorf("consume guest quota: %w", err)
	}
	if !ok {
		l.log.Warn(ctx, "guest quota was already exhausted when consuming")
	}
	return nil
}
