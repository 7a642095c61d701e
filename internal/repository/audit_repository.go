package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository persists drained audit events.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// InsertBatch writes a batch of audit events in one round trip.
func (r *AuditRepository) InsertBatch(ctx context.Context, events []model.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, ev := range events {
		details, err := json.Marshal(ev.Details)
		if err != nil {
			return fmt.Errorf("encode details: %w", err)
		}
		batch.Queue(
			`INSERT INTO audit_logs (action, entity_type, entity_id, details, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			ev.Action, ev.EntityType, ev.EntityID, details, ev.CreatedAt,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert audit event: %w", err)
		}
	}
	return nil
}
