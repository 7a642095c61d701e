package model

import (
	"time"

	"github.com/google/uuid"
)

// ValidationResult enumerates scan verdicts.
type ValidationResult string

const (
	ResultValid   ValidationResult = "valid"
	ResultInvalid ValidationResult = "invalid"
)

// ScanEntry is one append-only ledger row per validation attempt, written
// for successes and rejections alike. ExamAssignmentID is nil when the
// attempt failed before an assignment could be resolved (bad signature,
// malformed payload, unknown binding).
type ScanEntry struct {
	ID               int64            `json:"id"`
	ExamAssignmentID *uuid.UUID       `json:"exam_assignment_id,omitempty"`
	ProctorID        int              `json:"proctor_id"`
	ScannedAt        time.Time        `json:"scanned_at"`
	DeviceInfo       *string          `json:"device_info,omitempty"`
	Result           ValidationResult `json:"validation_result"`
	FailureReason    *string          `json:"failure_reason,omitempty"`
}

// ScanRequest is the proctor-device payload for validating a scanned QR.
type ScanRequest struct {
	QRPayload   string `json:"qr_payload" binding:"required"`
	QRSignature string `json:"qr_signature" binding:"required,len=64,hexadecimal"`
	DeviceInfo  string `json:"device_info" binding:"omitempty,max=255"`
}

// ScanResponse is the check-in verdict returned to the proctor device.
// A rejected scan is a normal business outcome, not an HTTP error.
type ScanResponse struct {
	Result        ValidationResult `json:"result"`
	ApplicantName string           `json:"applicant_name,omitempty"`
	ExamSessionID string           `json:"exam_session_id,omitempty"`
	FailureReason string           `json:"failure_reason,omitempty"`
}
