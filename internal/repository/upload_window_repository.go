package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-points-api/internal/models"
)

// UploadWindowRepository stores one submission gate row per department.
type UploadWindowRepository struct {
	db *sqlx.DB
}

// NewUploadWindowRepository constructs the repository.
func NewUploadWindowRepository(db *sqlx.DB) *UploadWindowRepository {
	return &UploadWindowRepository{db: db}
}

// FindByDepartment returns the stored window, or sql.ErrNoRows when the
// department has never been configured.
func (r *UploadWindowRepository) FindByDepartment(ctx context.Context, departmentID string) (*models.UploadWindow, error) {
	const query = `SELECT department_id, state, deadline_at, updated_by, updated_at FROM upload_windows WHERE department_id = $1`
	var window models.UploadWindow
	if err := r.db.GetContext(ctx, &window, query, departmentID); err != nil {
		return nil, err
	}
	return &window, nil
}

// Save upserts the department's window.
func (r *UploadWindowRepository) Save(ctx context.Context, window *models.UploadWindow) error {
	if window.UpdatedAt.IsZero() {
		window.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO upload_windows (department_id, state, deadline_at, updated_by, updated_at)
VALUES (:department_id, :state, :deadline_at, :updated_by, :updated_at)
ON CONFLICT (department_id) DO UPDATE SET state = EXCLUDED.state, deadline_at = EXCLUDED.deadline_at, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("save upload window: %w", err)
	}
	return nil
}
