package handoff

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tickerlens/tickerlens/internal/client/models"
	"github.com/tickerlens/tickerlens/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.AnalysisPayload, error) {
	var (
		ticker   string
		body     []byte
		storedAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT ticker, body, stored_at FROM handoff WHERE id = 1`,
	).Scan(&ticker, &body, &storedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get handoff slot: %w", err)
	}
	return &models.AnalysisPayload{Ticker: ticker, Body: body, StoredAt: storedAt}, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, p *models.AnalysisPayload) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO handoff (id, ticker, body, stored_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ticker = excluded.ticker,
			body = excluded.body,
			stored_at = excluded.stored_at
	`, p.Ticker, []byte(p.Body), p.StoredAt)
	if err != nil {
		return fmt.Errorf("failed to put handoff slot: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM handoff`)
	if err != nil {
		return fmt.Errorf("failed to clear handoff slot: %w", err)
	}
	return nil
}
