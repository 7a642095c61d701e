package model

import (
	"testing"
	"time"
)

func TestSessionWindow(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	start, end, err := SessionWindow(date, "08:00", "10:30", loc)
	if err != nil {
		t.Fatalf("session window: %v", err)
	}

	wantStart := time.Date(2026, 3, 10, 8, 0, 0, 0, loc)
	wantEnd := time.Date(2026, 3, 10, 10, 30, 0, 0, loc)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestSessionWindowBadClock(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct{ start, end string }{
		{"8am", "10:00"},
		{"08:00", "25:61"},
		{"", "10:00"},
	} {
		if _, _, err := SessionWindow(date, tc.start, tc.end, time.UTC); err == nil {
			t.Errorf("SessionWindow(%q, %q) accepted malformed clock", tc.start, tc.end)
		}
	}
}

func TestWindowUsesSessionDate(t *testing.T) {
	s := &ExamSession{
		Date:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "13:00",
		EndTime:   "15:00",
	}
	start, end, err := s.Window(time.UTC)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if start.Day() != 10 || end.Day() != 10 {
		t.Errorf("window not on session date: %v - %v", start, end)
	}
	if end.Sub(start) != 2*time.Hour {
		t.Errorf("window length = %v, want 2h", end.Sub(start))
	}
}
