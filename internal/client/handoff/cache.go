// Package handoff is the short-lived, ticker-keyed cache that carries one
// large analysis result from the action that fetched it to the command
// that renders it. Producer and consumer never share runtime memory, so
// the payload crosses through durable storage. A single overwritable slot
// avoids unbounded growth and matches the product rule that only the most
// recent analysis is free to revisit.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tickerlens/tickerlens/internal/client/models"
	handoffrepo "github.com/tickerlens/tickerlens/internal/client/repositories/handoff"
)

// ErrMissing means the slot is empty or holds a different ticker than the
// one requested. Readers must treat both identically and send the user
// back to the action that produces a payload, never render a blank or
// mismatched report.
var ErrMissing = errors.New("no analysis available")

// Cache is the single-slot handoff store.
type Cache struct {
	repo handoffrepo.Repository
	now  func() time.Time
}

// NewCache builds a Cache over the given repository.
func NewCache(repo handoffrepo.Repository) *Cache {
	return &Cache{repo: repo, now: time.Now}
}

// Store overwrites the slot with a fresh payload. Only the action that
// performed a successful metered fetch may call it.
func (c *Cache) Store(ctx context.Context, ticker string, body json.RawMessage) error {
	p := &models.AnalysisPayload{
		Ticker:   ticker,
		Body:     body,
		StoredAt: c.now(),
	}
	if err := c.repo.Put(ctx, p); err != nil {
		return fmt.Errorf("store analysis handoff: %w", err)
	}
	return nil
}

// Read returns the slot's payload if it matches ticker, ErrMissing
// otherwise. The entry is deliberately not deleted on read so the same
// report can be revisited without re-charging.
func (c *Cache) Read(ctx context.Context, ticker string) (*models.AnalysisPayload, error) {
	p, err := c.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read analysis handoff: %w", err)
	}
	if p == nil || p.Ticker != ticker {
		return nil, ErrMissing
	}
	return p, nil
}

// Current reports the ticker occupying the slot, or "" when empty. Used
// by refresh to know what to re-fetch and by report as a default argument.
func (c *Cache) Current(ctx context.Context) (string, error) {
	p, err := c.repo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read analysis handoff: %w", err)
	}
	if p == nil {
		return "", nil
	}
	return p.Ticker, nil
}

// Clear empties the slot. Invoked only when the user deliberately leaves
// the analysis flow, not on read.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear analysis handoff: %w", err)
	}
	return nil
}
