package service

import (
	"context"
	"errors"
	"testing"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/repository"
	"github.com/admitra/admitra-backend/internal/token"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type fakeApplicationStore struct {
	apps map[int]*model.Application
}

func (f *fakeApplicationStore) GetByID(_ context.Context, id int) (*model.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return app, nil
}

type fakeAssignmentWriter struct {
	created []*model.ExamAssignment
	err     error
}

func (f *fakeAssignmentWriter) CreateCapped(_ context.Context, a *model.ExamAssignment) error {
	if f.err != nil {
		return f.err
	}
	a.ID = uuid.New()
	f.created = append(f.created, a)
	return nil
}

func newIssuanceFixture(writerErr error) (*IssuanceService, *fakeAssignmentWriter, *fakeAudit, *token.Issuer) {
	store := &fakeApplicationStore{apps: map[int]*model.Application{
		101: {ID: 101, ApplicantID: applicantID, Status: model.ApplicationStatusApproved},
	}}
	writer := &fakeAssignmentWriter{err: writerErr}
	audit := &fakeAudit{}
	issuer := token.NewIssuer("issuance-test-secret")
	svc := NewIssuanceService(store, writer, issuer, audit, zerolog.Nop())
	return svc, writer, audit, issuer
}

func TestIssueAssignment(t *testing.T) {
	svc, writer, audit, issuer := newIssuanceFixture(nil)

	assignment, err := svc.IssueAssignment(context.Background(), 101, sessionID, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if len(writer.created) != 1 {
		t.Fatalf("created = %d, want 1", len(writer.created))
	}
	if assignment.ID == uuid.Nil {
		t.Error("assignment ID not set")
	}

	// The stored payload decodes back to the applicant and session, and the
	// stored signature is the issuer's signature over it.
	payload, _, err := token.DecodePayload(assignment.Payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ApplicantID != applicantID || payload.ExamSessionID != sessionID {
		t.Errorf("payload = %+v", payload)
	}
	if !issuer.Verify(assignment.Payload, assignment.Signature) {
		t.Error("stored signature does not verify")
	}

	if len(audit.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(audit.events))
	}
	ev := audit.events[0]
	if ev.Action != model.AuditActionAssignmentCreate || ev.EntityID != assignment.ID.String() {
		t.Errorf("audit event = %+v", ev)
	}
}

func TestIssueAssignmentCapacityExceeded(t *testing.T) {
	svc, writer, audit, _ := newIssuanceFixture(repository.ErrCapacityExceeded)

	_, err := svc.IssueAssignment(context.Background(), 101, sessionID, nil)
	if !errors.Is(err, repository.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if len(writer.created) != 0 {
		t.Error("assignment persisted despite full session")
	}
	if len(audit.events) != 0 {
		t.Error("audit emitted for rejected issuance")
	}
}

func TestIssueAssignmentAlreadyAssigned(t *testing.T) {
	svc, _, _, _ := newIssuanceFixture(repository.ErrAlreadyAssigned)

	_, err := svc.IssueAssignment(context.Background(), 101, sessionID, nil)
	if !errors.Is(err, repository.ErrAlreadyAssigned) {
		t.Fatalf("err = %v, want ErrAlreadyAssigned", err)
	}
}

func TestIssueAssignmentUnknownApplication(t *testing.T) {
	svc, writer, _, _ := newIssuanceFixture(nil)

	_, err := svc.IssueAssignment(context.Background(), 999, sessionID, nil)
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("err = %v, want wrapped ErrNoRows", err)
	}
	if len(writer.created) != 0 {
		t.Error("assignment persisted for unknown application")
	}
}
