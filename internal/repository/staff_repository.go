package repository

import (
	"context"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StaffRepository handles staff (admin/proctor) account data access.
type StaffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository creates a new StaffRepository.
func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// GetByEmail retrieves a staff account by email.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	s := &model.Staff{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM staff
		 WHERE email = $1`, email,
	).Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a staff account by ID.
func (r *StaffRepository) GetByID(ctx context.Context, id int) (*model.Staff, error) {
	s := &model.Staff{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM staff
		 WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a staff account.
func (r *StaffRepository) Create(ctx context.Context, s *model.Staff) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO staff (name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.Name, s.Email, s.PasswordHash, s.Role,
	).Scan(&s.ID, &s.CreatedAt)
}
