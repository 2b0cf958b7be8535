// Package quota maintains the purely local trial counter for anonymous
// visitors. The counter lives in the metadata store, is keyed per install
// (not per run), is decremented only by successful anonymous metered
// actions and is never replenished. Concurrent processes sharing the same
// database race with last-write-wins semantics; the server remains the
// enforcement boundary, this counter is advisory UX.
package quota

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tickerlens/tickerlens/internal/client/models"
	"github.com/tickerlens/tickerlens/internal/client/repositories/metadata"
)

// remainingKey is the metadata key holding the counter.
const remainingKey = "guest_quota_remaining"

// Tracker reads and decrements the guest quota.
type Tracker struct {
	repo    metadata.Repository
	initial int
}

// NewTracker builds a Tracker. initial is the value a fresh install starts
// with; values below zero fall back to the default.
func NewTracker(repo metadata.Repository, initial int) *Tracker {
	if initial < 0 {
		initial = models.DefaultGuestQuota
	}
	return &Tracker{repo: repo, initial: initial}
}

// Remaining returns the current counter, initializing it to the configured
// default the first time it is read with no stored value.
func (t *Tracker) Remaining(ctx context.Context) (int, error) {
	raw, err := t.repo.Get(ctx, remainingKey)
	if err != nil {
		return 0, fmt.Errorf("read guest quota: %w", err)
	}
	if raw == nil {
		if err := t.write(ctx, t.initial); err != nil {
			return 0, err
		}
		return t.initial, nil
	}

	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		// A mangled counter counts as spent, never as a fresh allowance.
		return 0, nil
	}
	if n > t.initial {
		n = t.initial
	}
	return n, nil
}

// Consume decrements the counter by one. Returns false without changing
// anything when the quota is already exhausted. Callers must invoke it
// only after the metered action actually succeeded.
func (t *Tracker) Consume(ctx context.Context) (bool, error) {
	n, err := t.Remaining(ctx)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := t.write(ctx, n-1); err != nil {
		return false, err
	}
	return true, nil
}

// Quota reports the counter together with its initial value.
func (t *Tracker) Quota(ctx context.Context) (models.GuestQuota, error) {
	n, err := t.Remaining(ctx)
	if err != nil {
		return models.GuestQuota{}, err
	}
	return models.GuestQuota{Remaining: n, Initial: t.initial}, nil
}

func (t *Tracker) write(ctx context.Context, n int) error {
	if err := t.repo.Set(ctx, remainingKey, []byte(strconv.Itoa(n))); err != nil {
		return fmt.Errorf("write guest quota: %w", err)
	}
	return nil
}
