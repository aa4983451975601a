package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-points-api/internal/models"
)

const studentColumns = `id, user_id, department_id, register_no, full_name, join_year, join_academic_year, current_year, current_academic_year, status,
year1_points, year2_points, year3_points, year4_points, year5_points, year6_points, total_points, created_at, updated_at`

// StudentRepository manages persistence for student records and their ledger columns.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(register_no) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	base := "FROM students WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY full_name ASC LIMIT %d OFFSET %d", studentColumns, base, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListByStatus returns every student with the given status in a stable order.
func (r *StudentRepository) ListByStatus(ctx context.Context, status models.StudentStatus) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE status = $1 ORDER BY id ASC", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, status); err != nil {
		return nil, fmt.Errorf("list students by status: %w", err)
	}
	return students, nil
}

// FindByID loads a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID loads the student profile linked to a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE user_id = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// CountTransition counts ACTIVE students together with the students left
// ALUMNI or PENDING_CLEARANCE on previousAcademicYear.
func (r *StudentRepository) CountTransition(ctx context.Context, previousAcademicYear string) (models.StudentTransitionCounts, error) {
	const query = `SELECT
	COUNT(*) FILTER (WHERE status = 'ACTIVE') AS active,
	COUNT(*) FILTER (WHERE status = 'ALUMNI' AND current_academic_year = $1) AS graduated,
	COUNT(*) FILTER (WHERE status = 'PENDING_CLEARANCE' AND current_academic_year = $1) AS pending_clearance
FROM students`
	var counts models.StudentTransitionCounts
	if err := r.db.GetContext(ctx, &counts, query, previousAcademicYear); err != nil {
		return models.StudentTransitionCounts{}, fmt.Errorf("count student transition: %w", err)
	}
	return counts, nil
}

// ApplyTransition writes one year-end outcome. The update only lands while the
// student is still ACTIVE on the expected academic year; otherwise
// sql.ErrNoRows is returned.
func (r *StudentRepository) ApplyTransition(ctx context.Context, transition models.StudentTransition) error {
	const query = `UPDATE students SET status = $1, current_year = $2, current_academic_year = $3, updated_at = $4
WHERE id = $5 AND status = 'ACTIVE' AND current_academic_year = $6`
	result, err := r.db.ExecContext(ctx, query,
		transition.Status,
		transition.CurrentYear,
		transition.CurrentAcademicYear,
		time.Now().UTC(),
		transition.StudentID,
		transition.ExpectedCurrentAcademicYear,
	)
	if err != nil {
		return fmt.Errorf("apply student transition: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply student transition rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ResolveClearance moves a PENDING_CLEARANCE student to the given state.
// sql.ErrNoRows is returned when the student is not awaiting clearance.
func (r *StudentRepository) ResolveClearance(ctx context.Context, transition models.StudentTransition) error {
	const query = `UPDATE students SET status = $1, current_year = $2, current_academic_year = $3, updated_at = $4
WHERE id = $5 AND status = 'PENDING_CLEARANCE'`
	result, err := r.db.ExecContext(ctx, query,
		transition.Status,
		transition.CurrentYear,
		transition.CurrentAcademicYear,
		time.Now().UTC(),
		transition.StudentID,
	)
	if err != nil {
		return fmt.Errorf("resolve student clearance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve student clearance rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
