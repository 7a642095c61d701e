package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/repository"
	"github.com/admitra/admitra-backend/internal/token"
	"github.com/admitra/admitra-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Fakes

type fakeResolver struct {
	targets map[string]*repository.ScanTarget
}

func targetKey(sessionID uuid.UUID, applicantID int) string {
	return fmt.Sprintf("%s|%d", sessionID, applicantID)
}

func (f *fakeResolver) FindScanTarget(_ context.Context, sessionID uuid.UUID, applicantID int) (*repository.ScanTarget, error) {
	t, ok := f.targets[targetKey(sessionID, applicantID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

type fakeLedger struct {
	entries []model.ScanEntry
	valid   map[uuid.UUID]bool
}

func (f *fakeLedger) Append(_ context.Context, e *model.ScanEntry) error {
	e.ID = int64(len(f.entries) + 1)
	e.ScannedAt = time.Now()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeLedger) AppendValid(ctx context.Context, e *model.ScanEntry) error {
	if f.valid[*e.ExamAssignmentID] {
		return repository.ErrDuplicateScan
	}
	f.valid[*e.ExamAssignmentID] = true
	return f.Append(ctx, e)
}

type fakeAudit struct {
	events []model.AuditEvent
}

func (f *fakeAudit) Emit(_ context.Context, ev model.AuditEvent) {
	f.events = append(f.events, ev)
}

type fakeFeed struct {
	events []websocket.ScanFeedEvent
}

func (f *fakeFeed) Publish(_ context.Context, _ uuid.UUID, ev websocket.ScanFeedEvent) {
	f.events = append(f.events, ev)
}

// Fixture

const (
	applicantID  = 42
	proctorID    = 7
	otherProctor = 8
)

var sessionID = uuid.MustParse("0d2f74c1-6a85-4a8b-b31e-54a4ed8cf1aa")

type scanFixture struct {
	svc      *ScanService
	issuer   *token.Issuer
	resolver *fakeResolver
	ledger   *fakeLedger
	audit    *fakeAudit
	feed     *fakeFeed
	target   *repository.ScanTarget
}

// newScanFixture wires a ScanService over fakes. The session runs
// 08:00-10:00 UTC on 2026-03-10 and the clock reads 09:00.
func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()

	target := &repository.ScanTarget{
		AssignmentID:  uuid.MustParse("91b4a2ee-33c0-4a3f-8f0f-0b1f6f1f2e3d"),
		ApplicantName: "Siti Rahmawati",
		SessionID:     sessionID,
		ProctorID:     proctorID,
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     "08:00",
		EndTime:       "10:00",
	}

	resolver := &fakeResolver{targets: map[string]*repository.ScanTarget{
		targetKey(sessionID, applicantID): target,
	}}
	ledger := &fakeLedger{valid: make(map[uuid.UUID]bool)}
	audit := &fakeAudit{}
	feed := &fakeFeed{}
	issuer := token.NewIssuer("scan-test-secret")

	svc := NewScanService(resolver, ledger, issuer, audit, feed, time.UTC, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	}

	return &scanFixture{
		svc:      svc,
		issuer:   issuer,
		resolver: resolver,
		ledger:   ledger,
		audit:    audit,
		feed:     feed,
		target:   target,
	}
}

func (f *scanFixture) signedInput(t *testing.T) ScanInput {
	t.Helper()
	payload := f.issuer.BuildPayload(applicantID, sessionID)
	return ScanInput{
		Payload:   payload,
		Signature: f.issuer.Sign(payload),
		ProctorID: proctorID,
	}
}

// assertSingleAttempt checks the per-attempt bookkeeping: exactly one
// ledger entry and one audit event, regardless of outcome.
func (f *scanFixture) assertSingleAttempt(t *testing.T) {
	t.Helper()
	if len(f.ledger.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(f.ledger.entries))
	}
	if len(f.audit.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(f.audit.events))
	}
	if f.audit.events[0].Action != model.AuditActionScanValidate {
		t.Errorf("audit action = %s", f.audit.events[0].Action)
	}
}

func TestScanValid(t *testing.T) {
	f := newScanFixture(t)

	verdict, err := f.svc.Validate(context.Background(), f.signedInput(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if verdict.Result != model.ResultValid {
		t.Fatalf("result = %s, want valid (reason: %s)", verdict.Result, verdict.FailureReason)
	}
	if verdict.ApplicantName != "Siti Rahmawati" {
		t.Errorf("applicant_name = %q", verdict.ApplicantName)
	}
	if verdict.ExamSessionID != sessionID.String() {
		t.Errorf("exam_session_id = %q", verdict.ExamSessionID)
	}

	f.assertSingleAttempt(t)
	entry := f.ledger.entries[0]
	if entry.Result != model.ResultValid {
		t.Errorf("ledger result = %s", entry.Result)
	}
	if entry.ExamAssignmentID == nil || *entry.ExamAssignmentID != f.target.AssignmentID {
		t.Errorf("ledger entry not bound to assignment")
	}
	if entry.FailureReason != nil {
		t.Errorf("valid entry carries failure reason %q", *entry.FailureReason)
	}
	if len(f.feed.events) != 1 || f.feed.events[0].Result != string(model.ResultValid) {
		t.Errorf("feed not notified of valid scan")
	}
}

func TestScanTamperedSignature(t *testing.T) {
	f := newScanFixture(t)
	in := f.signedInput(t)
	// Flip one character of the hex signature.
	if in.Signature[0] == '0' {
		in.Signature = "1" + in.Signature[1:]
	} else {
		in.Signature = "0" + in.Signature[1:]
	}

	verdict, err := f.svc.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if verdict.Result != model.ResultInvalid || verdict.FailureReason != ReasonTamperedQR {
		t.Fatalf("verdict = %+v, want invalid/%q", verdict, ReasonTamperedQR)
	}

	f.assertSingleAttempt(t)
	if f.ledger.entries[0].ExamAssignmentID != nil {
		t.Error("unresolved attempt must not reference an assignment")
	}
}

func TestScanMalformedPayload(t *testing.T) {
	f := newScanFixture(t)
	// Correctly signed garbage: passes the signature check, fails decode.
	payload := "certainly-not-json"
	verdict, err := f.svc.Validate(context.Background(), ScanInput{
		Payload:   payload,
		Signature: f.issuer.Sign(payload),
		ProctorID: proctorID,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if verdict.Result != model.ResultInvalid || verdict.FailureReason != ReasonTamperedQR {
		t.Fatalf("verdict = %+v, want invalid/%q", verdict, ReasonTamperedQR)
	}
	f.assertSingleAttempt(t)
}

func TestScanMissingFields(t *testing.T) {
	f := newScanFixture(t)
	payload := `{"issued_at":1700000000}`
	verdict, err := f.svc.Validate(context.Background(), ScanInput{
		Payload:   payload,
		Signature: f.issuer.Sign(payload),
		ProctorID: proctorID,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if verdict.Result != model.ResultInvalid || verdict.FailureReason != ReasonTamperedQR {
		t.Fatalf("verdict = %+v, want invalid/%q", verdict, ReasonTamperedQR)
	}
	f.assertSingleAttempt(t)
}

func TestScanLegacyFieldsTolerated(t *testing.T) {
	f := newScanFixture(t)
	// A token minted by an earlier generation embedding room and schedule
	// data. The extra fields must be ignored, not rejected.
	payload := `{"applicant_id":42,"exam_session_id":"` + sessionID.String() + `","issued_at":1700000000,"room_id":3,"schedule":"2026-03-10 08:00"}`

	verdict, err := f.svc.Validate(context.Background(), ScanInput{
		Payload:   payload,
		Signature: f.issuer.Sign(payload),
		ProctorID: proctorID,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if verdict.Result != model.ResultValid {
		t.Fatalf("legacy payload rejected: %+v", verdict)
	}
}

func TestScanUnknownAssignment(t *testing.T) {
	f := newScanFixture(t)
	// Signed payload for an applicant who has no assignment in the session.
	payload := f.issuer.BuildPayload(999, sessionID)
	verdict, err := f.svc.Validate(context.Background(), ScanInput{
		Payload:   payload,
		Signature: f.issuer.Sign(payload),
		ProctorID: proctorID,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if verdict.Result != model.ResultInvalid || verdict.FailureReason != ReasonTamperedQR {
		t.Fatalf("verdict = %+v, want invalid/%q", verdict, ReasonTamperedQR)
	}
	f.assertSingleAttempt(t)
	if f.ledger.entries[0].ExamAssignmentID != nil {
		t.Error("unresolved attempt must not reference an assignment")
	}
}

func TestScanWrongProctor(t *testing.T) {
	f := newScanFixture(t)
	in := f.signedInput(t)
	in.ProctorID = otherProctor

	verdict, err := f.svc.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if verdict.Result != model.ResultInvalid || verdict.FailureReason != ReasonWrongSession {
		t.Fatalf("verdict = %+v, want invalid/%q", verdict, ReasonWrongSession)
	}

	f.assertSingleAttempt(t)
	// From resolution onward the ledger row references the assignment.
	if f.ledger.entries[0].ExamAssignmentID == nil {
		t.Error("resolved attempt must reference the assignment")
	}
}

func TestScanOutsideWindow(t *testing.T) {
	for name, clock := range map[string]time.Time{
		"before start": time.Date(2026, 3, 10, 7, 59, 0, 0, time.UTC),
		"after end":    time.Date(2026, 3, 10, 10, 1, 0, 0, time.UTC),
		"wrong day":    time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
	} {
		t.Run(name, func(t *testing.T) {
			f := newScanFixture(t)
			f.svc.now = func() time.Time { return clock }

			verdict, err := f.svc.Validate(context.Background(), f.signedInput(t))
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if verdict.Result != model.ResultInvalid || verdict.FailureReason != ReasonOutsideWindow {
				t.Fatalf("verdict = %+v, want invalid/%q", verdict, ReasonOutsideWindow)
			}
			f.assertSingleAttempt(t)
		})
	}
}

func TestScanWindowBoundsInclusive(t *testing.T) {
	for name, clock := range map[string]time.Time{
		"at start": time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		"at end":   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	} {
		t.Run(name, func(t *testing.T) {
			f := newScanFixture(t)
			f.svc.now = func() time.Time { return clock }

			verdict, err := f.svc.Validate(context.Background(), f.signedInput(t))
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if verdict.Result != model.ResultValid {
				t.Fatalf("boundary scan rejected: %+v", verdict)
			}
		})
	}
}

func TestScanDuplicate(t *testing.T) {
	f := newScanFixture(t)
	ctx := context.Background()

	first, err := f.svc.Validate(ctx, f.signedInput(t))
	if err != nil {
		t.Fatalf("first validate: %v", err)
	}
	if first.Result != model.ResultValid {
		t.Fatalf("first scan rejected: %+v", first)
	}

	second, err := f.svc.Validate(ctx, f.signedInput(t))
	if err != nil {
		t.Fatalf("second validate: %v", err)
	}
	if second.Result != model.ResultInvalid || second.FailureReason != ReasonAlreadyUsed {
		t.Fatalf("second verdict = %+v, want invalid/%q", second, ReasonAlreadyUsed)
	}

	// Both attempts are on the ledger, only one of them valid.
	if len(f.ledger.entries) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(f.ledger.entries))
	}
	validCount := 0
	for _, e := range f.ledger.entries {
		if e.Result == model.ResultValid {
			validCount++
		}
	}
	if validCount != 1 {
		t.Errorf("valid entries = %d, want 1", validCount)
	}
	if len(f.audit.events) != 2 {
		t.Errorf("audit events = %d, want 2", len(f.audit.events))
	}
}

// TestScanAfterReschedule proves the no-regenerate policy: a token issued
// before the session moved still validates, because the window is read from
// the live session record.
func TestScanAfterReschedule(t *testing.T) {
	f := newScanFixture(t)
	in := f.signedInput(t) // minted against the original schedule

	// The session moves to the next day, 13:00-15:00, with a new proctor.
	f.target.Date = time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	f.target.StartTime = "13:00"
	f.target.EndTime = "15:00"
	f.target.ProctorID = otherProctor

	f.svc.now = func() time.Time {
		return time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)
	}
	in.ProctorID = otherProctor

	verdict, err := f.svc.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if verdict.Result != model.ResultValid {
		t.Fatalf("token invalidated by reschedule: %+v", verdict)
	}
}
