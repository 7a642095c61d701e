// Package token mints and verifies admission tokens: a deterministic JSON
// payload binding an applicant to an exam session, signed with HMAC-SHA256
// under a process-wide secret.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Payload is the unsigned data portion of an admission token. Consumers may
// add fields over time; validators ignore anything they do not recognize,
// so old tokens keep verifying against new code and vice versa.
type Payload struct {
	ApplicantID   int       `json:"applicant_id"`
	ExamSessionID uuid.UUID `json:"exam_session_id"`
	IssuedAt      int64     `json:"issued_at"` // unix seconds
}

// Issuer builds and signs admission token payloads.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer creates an Issuer over the given signing secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// BuildPayload encodes an applicant/session binding stamped with the current
// time. The encoding is a strict function of its fields: no runtime context
// is folded in, so two calls with the same inputs and timestamp produce
// byte-identical payloads.
func (i *Issuer) BuildPayload(applicantID int, examSessionID uuid.UUID) string {
	p := Payload{
		ApplicantID:   applicantID,
		ExamSessionID: examSessionID,
		IssuedAt:      i.now().Unix(),
	}
	// Marshalling a flat struct of ints and a UUID cannot fail.
	b, _ := json.Marshal(p)
	return string(b)
}

// Sign computes HMAC-SHA256 over the payload bytes and returns it as
// lowercase hex, always 64 characters.
func (i *Issuer) Sign(payload string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature for payload and compares it to the
// supplied one in constant time.
func (i *Issuer) Verify(payload, signature string) bool {
	expected := i.Sign(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// DecodePayload parses a payload string. Unknown keys (legacy room or
// schedule data embedded by earlier token generations) are tolerated and
// returned separately so callers can log them. Field validation is left to
// the caller: a decoded payload may still carry a zero applicant or session.
func DecodePayload(s string) (*Payload, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, nil, fmt.Errorf("decode payload: %w", err)
	}

	var p Payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, nil, fmt.Errorf("decode payload: %w", err)
	}

	var unknown []string
	for k := range raw {
		switch k {
		case "applicant_id", "exam_session_id", "issued_at":
		default:
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)

	return &p, unknown, nil
}
