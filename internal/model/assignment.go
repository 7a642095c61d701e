package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamAssignment links an approved application to an exam session and holds
// the admission token minted for it. One assignment per application.
// Payload and signature are immutable once issued.
type ExamAssignment struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID int       `json:"application_id"`
	ExamSessionID uuid.UUID `json:"exam_session_id"`
	SeatNumber    *string   `json:"seat_number,omitempty"`
	Payload       string    `json:"payload"`
	Signature     string    `json:"signature"`
	AssignedAt    time.Time `json:"assigned_at"`
}

// IssueAssignmentRequest is the admin payload for assigning an application
// to a session and minting its admission token.
type IssueAssignmentRequest struct {
	ApplicationID int       `json:"application_id" binding:"required,min=1"`
	ExamSessionID uuid.UUID `json:"exam_session_id" binding:"required"`
	SeatNumber    *string   `json:"seat_number" binding:"omitempty,max=10"`
}
