package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScanTarget is the assignment joined with everything the scan validator
// needs in one read: the applicant's display name and the live session
// schedule. Schedule fields come from the session row, never the token.
type ScanTarget struct {
	AssignmentID  uuid.UUID
	ApplicantName string
	SessionID     uuid.UUID
	ProctorID     int
	Date          time.Time
	StartTime     string // "HH:MM"
	EndTime       string // "HH:MM"
}

// AssignmentRepository handles exam assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// CreateCapped inserts an assignment, bounding the session's assignment
// count to its room capacity. The capacity check and the insert run in one
// transaction holding a row lock on the session, so two admins assigning
// into the same session concurrently serialize here and cannot both slip
// past a full room. Returns ErrCapacityExceeded (no row written) when the
// room is full, ErrAlreadyAssigned when the application already owns an
// assignment, pgx.ErrNoRows when the session does not exist.
func (r *AssignmentRepository) CreateCapped(ctx context.Context, a *model.ExamAssignment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT r.capacity
		 FROM exam_sessions s
		 JOIN rooms r ON r.id = s.room_id
		 WHERE s.id = $1
		 FOR UPDATE OF s`, a.ExamSessionID,
	).Scan(&capacity)
	if err != nil {
		return err
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_assignments WHERE exam_session_id = $1`,
		a.ExamSessionID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count assignments: %w", err)
	}

	if count >= capacity {
		return ErrCapacityExceeded
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO exam_assignments (application_id, exam_session_id, seat_number, payload, signature)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, assigned_at`,
		a.ApplicationID, a.ExamSessionID, a.SeatNumber, a.Payload, a.Signature,
	).Scan(&a.ID, &a.AssignedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyAssigned
		}
		return fmt.Errorf("insert assignment: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an assignment by ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamAssignment, error) {
	a := &model.ExamAssignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, application_id, exam_session_id, seat_number, payload, signature, assigned_at
		 FROM exam_assignments
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.ApplicationID, &a.ExamSessionID, &a.SeatNumber, &a.Payload, &a.Signature, &a.AssignedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindScanTarget resolves the assignment bound to a session/applicant pair
// along with the applicant's name and the session's live schedule.
func (r *AssignmentRepository) FindScanTarget(ctx context.Context, sessionID uuid.UUID, applicantID int) (*ScanTarget, error) {
	t := &ScanTarget{}
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, ap.name, s.id, s.proctor_id, s.date,
		        to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI')
		 FROM exam_assignments a
		 JOIN applications app ON app.id = a.application_id
		 JOIN applicants ap ON ap.id = app.applicant_id
		 JOIN exam_sessions s ON s.id = a.exam_session_id
		 WHERE a.exam_session_id = $1 AND app.applicant_id = $2`,
		sessionID, applicantID,
	).Scan(&t.AssignmentID, &t.ApplicantName, &t.SessionID, &t.ProctorID,
		&t.Date, &t.StartTime, &t.EndTime)
	if err != nil {
		return nil, err
	}
	return t, nil
}
