package repository

import (
	"context"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationRepository handles application data access.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// GetByID retrieves an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id int) (*model.Application, error) {
	a := &model.Application{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, applicant_id, status, created_at
		 FROM applications
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.ApplicantID, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
