package model

import (
	"time"
)

// StaffRole enumerates staff principal types.
type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "ADMIN"
	StaffRoleProctor StaffRole = "PROCTOR"
)

// Staff is an admin or proctor account. Admins issue assignments; proctors
// operate scan devices at the venue.
type Staff struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         StaffRole `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
