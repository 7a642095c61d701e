package service

import (
	"context"
	"fmt"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/token"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ApplicationStore is the persistence the issuance flow reads from.
type ApplicationStore interface {
	GetByID(ctx context.Context, id int) (*model.Application, error)
}

// AssignmentWriter persists assignments under the session capacity bound.
// CreateCapped is atomic per session: see repository.AssignmentRepository.
type AssignmentWriter interface {
	CreateCapped(ctx context.Context, a *model.ExamAssignment) error
}

// IssuanceService assigns applications to exam sessions, bounded by room
// capacity, and mints the admission token stored with the assignment.
type IssuanceService struct {
	applications ApplicationStore
	assignments  AssignmentWriter
	issuer       *token.Issuer
	audit        AuditPublisher
	log          zerolog.Logger
}

// NewIssuanceService creates a new IssuanceService.
func NewIssuanceService(
	applications ApplicationStore,
	assignments AssignmentWriter,
	issuer *token.Issuer,
	audit AuditPublisher,
	log zerolog.Logger,
) *IssuanceService {
	return &IssuanceService{
		applications: applications,
		assignments:  assignments,
		issuer:       issuer,
		audit:        audit,
		log:          log.With().Str("component", "issuance_service").Logger(),
	}
}

// IssueAssignment mints a token for the application's applicant and persists
// the assignment, provided the session's room still has a free slot. The
// capacity check and insert happen inside one transaction in the store, so
// concurrent calls for the same session cannot over-issue. Returns
// repository.ErrCapacityExceeded or repository.ErrAlreadyAssigned unchanged
// for the caller to surface.
func (s *IssuanceService) IssueAssignment(ctx context.Context, applicationID int, sessionID uuid.UUID, seatNumber *string) (*model.ExamAssignment, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	payload := s.issuer.BuildPayload(app.ApplicantID, sessionID)
	signature := s.issuer.Sign(payload)

	assignment := &model.ExamAssignment{
		ApplicationID: applicationID,
		ExamSessionID: sessionID,
		SeatNumber:    seatNumber,
		Payload:       payload,
		Signature:     signature,
	}

	if err := s.assignments.CreateCapped(ctx, assignment); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("assignment_id", assignment.ID.String()).
		Int("application_id", applicationID).
		Str("exam_session_id", sessionID.String()).
		Msg("Assignment issued")

	s.audit.Emit(ctx, model.AuditEvent{
		Action:     model.AuditActionAssignmentCreate,
		EntityType: "exam_assignment",
		EntityID:   assignment.ID.String(),
		Details: map[string]any{
			"application_id":  applicationID,
			"applicant_id":    app.ApplicantID,
			"exam_session_id": sessionID.String(),
		},
	})

	return assignment, nil
}
