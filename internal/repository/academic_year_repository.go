package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-points-api/internal/models"
)

const academicYearColumns = `id, label, started_at, ended_at, is_active, total_students, graduated_students, pending_clearance_students, started_by`

// AcademicYearRepository persists the append-only academic year history.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository constructs the repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// FindActive returns the active academic year, or sql.ErrNoRows when none exists.
func (r *AcademicYearRepository) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_years WHERE is_active = TRUE LIMIT 1", academicYearColumns)
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query); err != nil {
		return nil, err
	}
	return &year, nil
}

// List returns the history, most recent first.
func (r *AcademicYearRepository) List(ctx context.Context) ([]models.AcademicYear, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_years ORDER BY started_at DESC", academicYearColumns)
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// Start closes the active academic year and inserts year as the new active
// record in one transaction.
func (r *AcademicYearRepository) Start(ctx context.Context, year *models.AcademicYear) (err error) {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	if year.StartedAt.IsZero() {
		year.StartedAt = time.Now().UTC()
	}
	year.IsActive = true
	year.EndedAt = nil

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin start academic year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE academic_years SET is_active = FALSE, ended_at = $1 WHERE is_active = TRUE`, year.StartedAt); err != nil {
		return fmt.Errorf("deactivate academic year: %w", err)
	}

	const insert = `INSERT INTO academic_years (id, label, started_at, ended_at, is_active, total_students, graduated_students, pending_clearance_students, started_by)
VALUES (:id, :label, :started_at, :ended_at, :is_active, :total_students, :graduated_students, :pending_clearance_students, :started_by)`
	if _, err = tx.NamedExecContext(ctx, insert, year); err != nil {
		return fmt.Errorf("insert academic year: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit start academic year tx: %w", err)
	}
	return nil
}
