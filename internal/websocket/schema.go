package websocket

import (
	"time"
)

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventScan  Event = "scan"
)

// ScanFeedEvent is one scan verdict pushed to session feed subscribers.
// Mirrors the ledger row, minus device details.
type ScanFeedEvent struct {
	Event         Event     `json:"event"`
	SessionID     string    `json:"exam_session_id"`
	AssignmentID  string    `json:"exam_assignment_id,omitempty"`
	ApplicantName string    `json:"applicant_name,omitempty"`
	Result        string    `json:"result"`
	FailureReason string    `json:"failure_reason,omitempty"`
	ScannedAt     time.Time `json:"scanned_at"`
}

// ErrorResponse reports a stream-level failure before closing.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
