package token

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

const testSecret = "unit-test-secret"

var testSessionID = uuid.MustParse("5f4cde6b-2b7e-4f1e-9d3a-8c6a1f2b3c4d")

func fixedIssuer(t *testing.T) *Issuer {
	t.Helper()
	i := NewIssuer(testSecret)
	i.now = func() time.Time { return time.Unix(1760000000, 0) }
	return i
}

func TestBuildPayloadDeterministic(t *testing.T) {
	i := fixedIssuer(t)

	p1 := i.BuildPayload(42, testSessionID)
	p2 := i.BuildPayload(42, testSessionID)
	if p1 != p2 {
		t.Fatalf("payloads differ:\n%s\n%s", p1, p2)
	}

	decoded, unknown, err := DecodePayload(p1)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(unknown) != 0 {
		t.Fatalf("unexpected unknown fields: %v", unknown)
	}
	if decoded.ApplicantID != 42 {
		t.Errorf("applicant_id = %d, want 42", decoded.ApplicantID)
	}
	if decoded.ExamSessionID != testSessionID {
		t.Errorf("exam_session_id = %s, want %s", decoded.ExamSessionID, testSessionID)
	}
	if decoded.IssuedAt != 1760000000 {
		t.Errorf("issued_at = %d, want 1760000000", decoded.IssuedAt)
	}
}

func TestSignDeterministicHex(t *testing.T) {
	i := fixedIssuer(t)
	payload := i.BuildPayload(42, testSessionID)

	sig := i.Sign(payload)
	if sig != i.Sign(payload) {
		t.Fatal("sign is not deterministic")
	}
	if len(sig) != 64 {
		t.Fatalf("signature length = %d, want 64", len(sig))
	}
	if sig != strings.ToLower(sig) {
		t.Error("signature is not lowercase hex")
	}
	for _, r := range sig {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Fatalf("signature contains non-hex rune %q", r)
		}
	}
}

func TestVerify(t *testing.T) {
	i := fixedIssuer(t)
	payload := i.BuildPayload(42, testSessionID)
	sig := i.Sign(payload)

	if !i.Verify(payload, sig) {
		t.Fatal("correct signature rejected")
	}

	// One flipped character must fail verification.
	flipped := flipLastChar(sig)
	if i.Verify(payload, flipped) {
		t.Fatal("tampered signature accepted")
	}

	// A signature minted under a different secret must fail too.
	other := NewIssuer("some-other-secret")
	if i.Verify(payload, other.Sign(payload)) {
		t.Fatal("foreign signature accepted")
	}
}

func TestDecodePayloadLegacyFields(t *testing.T) {
	// Older token generations embedded room and schedule data. They must be
	// surfaced as unknown, never rejected.
	raw := `{"applicant_id":42,"exam_session_id":"` + testSessionID.String() + `","issued_at":1700000000,"room_id":3,"schedule":"2024-05-01 08:00"}`

	p, unknown, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ApplicantID != 42 || p.ExamSessionID != testSessionID {
		t.Errorf("known fields not decoded: %+v", p)
	}
	want := []string{"room_id", "schedule"}
	if len(unknown) != len(want) {
		t.Fatalf("unknown = %v, want %v", unknown, want)
	}
	for n := range want {
		if unknown[n] != want[n] {
			t.Fatalf("unknown = %v, want %v", unknown, want)
		}
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	if _, _, err := DecodePayload("not a payload"); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestDecodePayloadMissingFields(t *testing.T) {
	// Decoding succeeds; field validation is the validator's job.
	p, _, err := DecodePayload(`{"issued_at":1700000000}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ApplicantID != 0 {
		t.Errorf("applicant_id = %d, want 0", p.ApplicantID)
	}
	if p.ExamSessionID != uuid.Nil {
		t.Errorf("exam_session_id = %s, want nil UUID", p.ExamSessionID)
	}
}

func flipLastChar(s string) string {
	last := s[len(s)-1]
	replacement := byte('0')
	if last == '0' {
		replacement = '1'
	}
	return s[:len(s)-1] + string(replacement)
}
