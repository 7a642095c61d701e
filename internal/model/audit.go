package model

import (
	"time"
)

// Audit actions emitted by the engine.
const (
	AuditActionAssignmentCreate = "assignment.create"
	AuditActionScanValidate     = "scan.validate"
)

// AuditEvent is a fire-and-log record of a state-changing or scan action.
// Events are queued to Redis and drained to the audit_logs table by a
// background worker; publishing never fails the originating request.
type AuditEvent struct {
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
