// Package handoff persists the single "current analysis" slot. The table
// holds at most one row, overwritten on every new analysis; it is how a
// payload survives from the command that fetched it to the command that
// renders it.
package handoff

import (
	"context"

	"github.com/tickerlens/tickerlens/internal/client/models"
)

// Repository is the single-slot contract. Get returns (nil, nil) when the
// slot is empty.
type Repository interface {
	Get(ctx context.Context) (*models.AnalysisPayload, error)
	Put(ctx context.Context, p *models.AnalysisPayload) error
	Clear(ctx context.Context) error
}
