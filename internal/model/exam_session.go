package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Room is a physical exam venue. Its capacity bounds how many assignments
// a session held in it may issue.
type Room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// ExamSession is a scheduled sitting in a room, supervised by one proctor.
// Sessions stay mutable after tokens are issued: validation always reads the
// live room/date/time from this record, never from token payloads.
type ExamSession struct {
	ID        uuid.UUID `json:"id"`
	RoomID    int       `json:"room_id"`
	ProctorID int       `json:"proctor_id"`
	Date      time.Time `json:"date"`       // date component only
	StartTime string    `json:"start_time"` // wall clock, "HH:MM"
	EndTime   string    `json:"end_time"`   // wall clock, "HH:MM"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Window materializes the session's check-in window in the given location.
// The end bound is inclusive.
func (s *ExamSession) Window(loc *time.Location) (time.Time, time.Time, error) {
	return SessionWindow(s.Date, s.StartTime, s.EndTime, loc)
}

// SessionWindow combines a session date with "HH:MM" wall-clock bounds.
func SessionWindow(date time.Time, startTime, endTime string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := combine(date, startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start time: %w", err)
	}
	end, err := combine(date, endTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end time: %w", err)
	}
	return start, end, nil
}

func combine(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// RescheduleSessionRequest is the admin payload for updating a session's
// room, proctor or schedule. Already-issued tokens are never regenerated.
type RescheduleSessionRequest struct {
	RoomID    *int       `json:"room_id" binding:"omitempty,min=1"`
	ProctorID *int       `json:"proctor_id" binding:"omitempty,min=1"`
	Date      *time.Time `json:"date" binding:"omitempty"`
	StartTime *string    `json:"start_time" binding:"omitempty,len=5"`
	EndTime   *string    `json:"end_time" binding:"omitempty,len=5"`
}
