package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/repository"
	"github.com/admitra/admitra-backend/internal/token"
	"github.com/admitra/admitra-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Failure reasons returned to the proctor device. Signature, decode, field
// and resolution failures deliberately share one opaque reason so a scanned
// token leaks nothing about which step rejected it.
const (
	ReasonTamperedQR    = "Invalid or tampered QR"
	ReasonWrongSession  = "Wrong session"
	ReasonOutsideWindow = "Outside time window"
	ReasonAlreadyUsed   = "Already scanned"
)

// AssignmentResolver resolves the assignment a payload is bound to.
type AssignmentResolver interface {
	FindScanTarget(ctx context.Context, sessionID uuid.UUID, applicantID int) (*repository.ScanTarget, error)
}

// ScanLedger appends validation attempts. AppendValid must be atomic with
// respect to the one-valid-entry-per-assignment invariant and return
// repository.ErrDuplicateScan when it would be violated.
type ScanLedger interface {
	Append(ctx context.Context, e *model.ScanEntry) error
	AppendValid(ctx context.Context, e *model.ScanEntry) error
}

// ScanInput is one validation attempt from a proctor device.
type ScanInput struct {
	Payload    string
	Signature  string
	ProctorID  int
	DeviceInfo string
}

// ScanService is the check-in state machine. Every attempt, accepted or
// rejected, writes exactly one ledger entry and emits one audit event.
type ScanService struct {
	assignments AssignmentResolver
	ledger      ScanLedger
	issuer      *token.Issuer
	audit       AuditPublisher
	feed        FeedPublisher
	loc         *time.Location
	now         func() time.Time
	log         zerolog.Logger
}

// NewScanService creates a new ScanService. loc is the timezone session
// windows are interpreted in.
func NewScanService(
	assignments AssignmentResolver,
	ledger ScanLedger,
	issuer *token.Issuer,
	audit AuditPublisher,
	feed FeedPublisher,
	loc *time.Location,
	log zerolog.Logger,
) *ScanService {
	return &ScanService{
		assignments: assignments,
		ledger:      ledger,
		issuer:      issuer,
		audit:       audit,
		feed:        feed,
		loc:         loc,
		now:         time.Now,
		log:         log.With().Str("component", "scan_service").Logger(),
	}
}

// Validate runs the ordered checks over a scanned token and returns the
// verdict. Checks short-circuit at the first failure; the schedule and
// proctor are read from the live session record, never from the payload,
// which is what lets sessions be rescheduled without reprinting tokens.
func (s *ScanService) Validate(ctx context.Context, in ScanInput) (*model.ScanResponse, error) {
	// 1. Signature.
	if !s.issuer.Verify(in.Payload, in.Signature) {
		return s.reject(ctx, in, nil, uuid.Nil, ReasonTamperedQR)
	}

	// 2. Payload decode.
	payload, unknown, err := token.DecodePayload(in.Payload)
	if err != nil {
		return s.reject(ctx, in, nil, uuid.Nil, ReasonTamperedQR)
	}
	if len(unknown) > 0 {
		// Older token generations embedded room/schedule data. Tolerated,
		// never used.
		s.log.Debug().Strs("fields", unknown).Msg("Ignoring legacy payload fields")
	}

	// 3. Field presence.
	if payload.ApplicantID == 0 || payload.ExamSessionID == uuid.Nil {
		return s.reject(ctx, in, nil, uuid.Nil, ReasonTamperedQR)
	}

	// 4. Assignment resolution.
	target, err := s.assignments.FindScanTarget(ctx, payload.ExamSessionID, payload.ApplicantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.reject(ctx, in, nil, payload.ExamSessionID, ReasonTamperedQR)
		}
		return nil, fmt.Errorf("resolve assignment: %w", err)
	}

	// 5. Proctor authorization.
	if target.ProctorID != in.ProctorID {
		return s.reject(ctx, in, &target.AssignmentID, target.SessionID, ReasonWrongSession)
	}

	// 6. Time window, read live from the session row.
	start, end, err := model.SessionWindow(target.Date, target.StartTime, target.EndTime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("session window: %w", err)
	}
	now := s.now()
	if now.Before(start) || now.After(end) {
		return s.reject(ctx, in, &target.AssignmentID, target.SessionID, ReasonOutsideWindow)
	}

	// 7+8. Single-use and accept collapse into one atomic ledger write: the
	// partial unique index admits at most one valid entry per assignment.
	entry := &model.ScanEntry{
		ExamAssignmentID: &target.AssignmentID,
		ProctorID:        in.ProctorID,
		DeviceInfo:       optional(in.DeviceInfo),
		Result:           model.ResultValid,
	}
	if err := s.ledger.AppendValid(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateScan) {
			return s.reject(ctx, in, &target.AssignmentID, target.SessionID, ReasonAlreadyUsed)
		}
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	s.publish(ctx, target.SessionID, &target.AssignmentID, target.ApplicantName, model.ResultValid, "")

	return &model.ScanResponse{
		Result:        model.ResultValid,
		ApplicantName: target.ApplicantName,
		ExamSessionID: target.SessionID.String(),
	}, nil
}

// reject writes the rejection ledger entry, emits the audit event and feed
// message, and returns the invalid verdict. assignmentID is nil when the
// attempt failed before resolution; sessionID is uuid.Nil when not even the
// payload's claimed session is trustworthy.
func (s *ScanService) reject(ctx context.Context, in ScanInput, assignmentID *uuid.UUID, sessionID uuid.UUID, reason string) (*model.ScanResponse, error) {
	entry := &model.ScanEntry{
		ExamAssignmentID: assignmentID,
		ProctorID:        in.ProctorID,
		DeviceInfo:       optional(in.DeviceInfo),
		Result:           model.ResultInvalid,
		FailureReason:    &reason,
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	s.publish(ctx, sessionID, assignmentID, "", model.ResultInvalid, reason)

	return &model.ScanResponse{
		Result:        model.ResultInvalid,
		FailureReason: reason,
	}, nil
}

// publish emits the audit event and, when the session is known, the live
// feed message. One audit event per attempt, success or not.
func (s *ScanService) publish(ctx context.Context, sessionID uuid.UUID, assignmentID *uuid.UUID, applicantName string, result model.ValidationResult, reason string) {
	details := map[string]any{
		"result": string(result),
	}
	entityID := ""
	if assignmentID != nil {
		entityID = assignmentID.String()
		details["exam_assignment_id"] = entityID
	}
	if sessionID != uuid.Nil {
		details["exam_session_id"] = sessionID.String()
	}
	if reason != "" {
		details["failure_reason"] = reason
	}

	s.audit.Emit(ctx, model.AuditEvent{
		Action:     model.AuditActionScanValidate,
		EntityType: "scan_entry",
		EntityID:   entityID,
		Details:    details,
	})

	if sessionID == uuid.Nil {
		return
	}
	ev := websocket.ScanFeedEvent{
		Event:         websocket.EventScan,
		SessionID:     sessionID.String(),
		ApplicantName: applicantName,
		Result:        string(result),
		FailureReason: reason,
		ScannedAt:     s.now(),
	}
	if assignmentID != nil {
		ev.AssignmentID = assignmentID.String()
	}
	s.feed.Publish(ctx, sessionID, ev)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
