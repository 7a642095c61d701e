package service

import (
	"context"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/repository"
)

// StaffService handles staff account lookups.
type StaffService struct {
	staff *repository.StaffRepository
}

// NewStaffService creates a new StaffService.
func NewStaffService(staff *repository.StaffRepository) *StaffService {
	return &StaffService{staff: staff}
}

// GetByEmail retrieves a staff account by email.
func (s *StaffService) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	return s.staff.GetByEmail(ctx, email)
}

// GetByID retrieves a staff account by ID.
func (s *StaffService) GetByID(ctx context.Context, id int) (*model.Staff, error) {
	return s.staff.GetByID(ctx, id)
}

// Create inserts a staff account.
func (s *StaffService) Create(ctx context.Context, staff *model.Staff) error {
	return s.staff.Create(ctx, staff)
}
