package repository

import (
	"context"
	"time"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionDetail is a session joined with its room and current assignment
// count, for admin read-back.
type SessionDetail struct {
	model.ExamSession
	RoomName        string `json:"room_name"`
	RoomCapacity    int    `json:"room_capacity"`
	AssignmentCount int    `json:"assignment_count"`
}

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

// GetByID retrieves a session by ID.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, room_id, proctor_id, date,
		        to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		        created_at, updated_at
		 FROM exam_sessions
		 WHERE id = $1`, id,
	).Scan(&s.ID, &s.RoomID, &s.ProctorID, &s.Date, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetDetail retrieves a session with its room and assignment count.
func (r *ExamSessionRepository) GetDetail(ctx context.Context, id uuid.UUID) (*SessionDetail, error) {
	d := &SessionDetail{}
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.room_id, s.proctor_id, s.date,
		        to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
		        s.created_at, s.updated_at,
		        r.name, r.capacity,
		        (SELECT COUNT(*) FROM exam_assignments a WHERE a.exam_session_id = s.id)
		 FROM exam_sessions s
		 JOIN rooms r ON r.id = s.room_id
		 WHERE s.id = $1`, id,
	).Scan(&d.ID, &d.RoomID, &d.ProctorID, &d.Date, &d.StartTime, &d.EndTime,
		&d.CreatedAt, &d.UpdatedAt, &d.RoomName, &d.RoomCapacity, &d.AssignmentCount)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Update persists a session's room, proctor and schedule. Assignments and
// their tokens are deliberately untouched: validation reads the live row.
func (r *ExamSessionRepository) Update(ctx context.Context, s *model.ExamSession) error {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET room_id = $1, proctor_id = $2, date = $3,
		     start_time = $4::time, end_time = $5::time, updated_at = $6
		 WHERE id = $7`,
		s.RoomID, s.ProctorID, s.Date, s.StartTime, s.EndTime, now, s.ID)
	if err != nil {
		return err
	}
	s.UpdatedAt = now
	return nil
}
