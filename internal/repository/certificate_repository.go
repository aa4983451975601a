package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/models"
)

// ErrLedgerNotWritable is returned when the owning student no longer accepts
// points (graduated or removed).
var ErrLedgerNotWritable = errors.New("student ledger is not writable")

const certificateColumns = `id, student_id, department_id, category_id, level, title, organizer, event_date, description, file_path, mime_type, size_bytes,
status, points_allocated, bucket, academic_year, rejection_reason, reviewed_by, reviewer_role, created_at, reviewed_at`

// CertificateRepository persists certificates and applies review decisions.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs the repository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts a new pending certificate.
func (r *CertificateRepository) Create(ctx context.Context, certificate *models.Certificate) error {
	if certificate.ID == "" {
		certificate.ID = uuid.NewString()
	}
	if certificate.Status == "" {
		certificate.Status = models.CertificateStatusPending
	}
	if certificate.CreatedAt.IsZero() {
		certificate.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO certificates (id, student_id, department_id, category_id, level, title, organizer, event_date, description, file_path, mime_type, size_bytes, status, academic_year, created_at)
VALUES (:id, :student_id, :department_id, :category_id, :level, :title, :organizer, :event_date, :description, :file_path, :mime_type, :size_bytes, :status, :academic_year, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, certificate); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

// FindByID loads a certificate by identifier.
func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE id = $1", certificateColumns)
	var certificate models.Certificate
	if err := r.db.GetContext(ctx, &certificate, query, id); err != nil {
		return nil, err
	}
	return &certificate, nil
}

// List returns certificates matching the filter, newest first.
func (r *CertificateRepository) List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)))
	}
	base := "FROM certificates WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", certificateColumns, base, size, offset)
	var certificates []models.Certificate
	if err := r.db.SelectContext(ctx, &certificates, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list certificates: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count certificates: %w", err)
	}
	return certificates, total, nil
}

// Approve marks a pending certificate approved and credits the student's
// bucket in the same transaction. sql.ErrNoRows means the certificate was no
// longer pending; ErrLedgerNotWritable means the student could not be credited.
func (r *CertificateRepository) Approve(ctx context.Context, studentID string, decision models.CertificateDecision) (err error) {
	column, ok := bucketColumn(ledger.Bucket(decision.Bucket))
	if !ok {
		return fmt.Errorf("approve certificate: unknown bucket %q", decision.Bucket)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const certificateQuery = `UPDATE certificates SET status = $1, points_allocated = $2, bucket = $3, reviewed_by = $4, reviewer_role = $5, reviewed_at = $6
WHERE id = $7 AND status = 'PENDING'`
	result, err := tx.ExecContext(ctx, certificateQuery,
		models.CertificateStatusApproved,
		decision.Points,
		decision.Bucket,
		decision.ReviewedBy,
		decision.ReviewerRole,
		decision.ReviewedAt,
		decision.CertificateID,
	)
	if err != nil {
		return fmt.Errorf("approve certificate: %w", err)
	}
	if err = requireOneRow(result, sql.ErrNoRows); err != nil {
		return err
	}

	studentQuery := fmt.Sprintf(`UPDATE students SET %[1]s = %[1]s + $1, total_points = total_points + $1, updated_at = $2
WHERE id = $3 AND status <> 'ALUMNI'`, column)
	result, err = tx.ExecContext(ctx, studentQuery, decision.Points, decision.ReviewedAt, studentID)
	if err != nil {
		return fmt.Errorf("credit student points: %w", err)
	}
	if err = requireOneRow(result, ErrLedgerNotWritable); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit approve tx: %w", err)
	}
	return nil
}

// Reject marks a pending certificate rejected. sql.ErrNoRows means the
// certificate was no longer pending.
func (r *CertificateRepository) Reject(ctx context.Context, decision models.CertificateDecision) error {
	const query = `UPDATE certificates SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewer_role = $4, reviewed_at = $5
WHERE id = $6 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query,
		models.CertificateStatusRejected,
		decision.RejectionReason,
		decision.ReviewedBy,
		decision.ReviewerRole,
		decision.ReviewedAt,
		decision.CertificateID,
	)
	if err != nil {
		return fmt.Errorf("reject certificate: %w", err)
	}
	return requireOneRow(result, sql.ErrNoRows)
}

// DeleteOwned removes a pending or rejected certificate owned by studentID.
// sql.ErrNoRows means nothing matched.
func (r *CertificateRepository) DeleteOwned(ctx context.Context, id, studentID string) error {
	const query = `DELETE FROM certificates WHERE id = $1 AND student_id = $2 AND status IN ('PENDING', 'REJECTED')`
	result, err := r.db.ExecContext(ctx, query, id, studentID)
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	return requireOneRow(result, sql.ErrNoRows)
}

// bucketColumn maps a ledger bucket to its students column.
func bucketColumn(b ledger.Bucket) (string, bool) {
	o, ok := ledger.OrdinalOf(b)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("year%d_points", int(o)), true
}

func requireOneRow(result sql.Result, none error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return none
	}
	return nil
}
