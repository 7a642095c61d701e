package repository

import (
	"context"
	"errors"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScanRepository handles the append-only scan ledger.
type ScanRepository struct {
	pool *pgxpool.Pool
}

// NewScanRepository creates a new ScanRepository.
func NewScanRepository(pool *pgxpool.Pool) *ScanRepository {
	return &ScanRepository{pool: pool}
}

// Append writes one ledger row for a validation attempt.
func (r *ScanRepository) Append(ctx context.Context, e *model.ScanEntry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO scan_entries (exam_assignment_id, proctor_id, device_info, validation_result, failure_reason)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, scanned_at`,
		e.ExamAssignmentID, e.ProctorID, e.DeviceInfo, e.Result, e.FailureReason,
	).Scan(&e.ID, &e.ScannedAt)
}

// AppendValid writes the accepting ledger row for an assignment. The check
// that no prior valid entry exists and the insert are a single atomic write:
// a partial unique index allows at most one valid row per assignment, so
// concurrent scans of the same token race into the index and exactly one
// wins. The loser gets ErrDuplicateScan.
func (r *ScanRepository) AppendValid(ctx context.Context, e *model.ScanEntry) error {
	err := r.Append(ctx, e)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateScan
		}
		return err
	}
	return nil
}
