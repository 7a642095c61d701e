package service

import (
	"context"
	"fmt"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/repository"
	"github.com/google/uuid"
)

// SessionService handles exam session reads and rescheduling.
type SessionService struct {
	sessions *repository.ExamSessionRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions *repository.ExamSessionRepository) *SessionService {
	return &SessionService{sessions: sessions}
}

// GetDetail returns a session with its room capacity and assignment count.
func (s *SessionService) GetDetail(ctx context.Context, id uuid.UUID) (*repository.SessionDetail, error) {
	return s.sessions.GetDetail(ctx, id)
}

// Reschedule applies a partial update to a session's room, proctor or
// schedule. Already-issued tokens stay valid: the scan path reads the
// session row, so the new schedule takes effect on the next scan.
func (s *SessionService) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleSessionRequest) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if req.RoomID != nil {
		session.RoomID = *req.RoomID
	}
	if req.ProctorID != nil {
		session.ProctorID = *req.ProctorID
	}
	if req.Date != nil {
		session.Date = *req.Date
	}
	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = *req.EndTime
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return session, nil
}
