package model

import (
	"time"
)

// Applicant is a person applying to sit an exam.
type Applicant struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplicationStatus enumerates application states.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// Application is an applicant's request to sit an exam. An application owns
// at most one exam assignment.
type Application struct {
	ID          int               `json:"id"`
	ApplicantID int               `json:"applicant_id"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}
