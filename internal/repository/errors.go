package repository

import (
	"errors"
)

// Domain errors surfaced by repositories. Both are enforced inside the
// database (row lock for capacity, unique constraints for the rest) so they
// hold under concurrent callers.
var (
	// ErrCapacityExceeded is returned when a session's room is already full.
	ErrCapacityExceeded = errors.New("session room capacity exceeded")

	// ErrAlreadyAssigned is returned when the application already owns an
	// assignment.
	ErrAlreadyAssigned = errors.New("application already has an assignment")

	// ErrDuplicateScan is returned when a valid scan entry already exists
	// for the assignment.
	ErrDuplicateScan = errors.New("assignment already has a valid scan")
)
