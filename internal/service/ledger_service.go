package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

// LedgerService serves read-only progress views of student ledgers.
type LedgerService struct {
	students studentReader
	table    ledger.RequirementTable
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewLedgerService constructs the service around the canonical requirement table.
func NewLedgerService(students studentReader, table ledger.RequirementTable, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		students: students,
		table:    table,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Requirements exposes the table used for every progress computation.
func (s *LedgerService) Requirements() ledger.RequirementTable {
	return s.table
}

// Progress returns the progress of studentID if the actor may view it.
func (s *LedgerService) Progress(ctx context.Context, studentID string, actor *models.JWTClaims) (*dto.StudentProgress, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !Authorize(actor.Role, ActionViewProgress, PolicyContext{
		ActorID:              actor.UserID,
		ActorDepartmentID:    actor.DepartmentID,
		OwnerUserID:          student.UserID,
		ResourceDepartmentID: student.DepartmentID,
	}) {
		return nil, appErrors.ErrForbidden
	}
	return s.cachedProgress(ctx, student)
}

// ProgressForUser returns the progress of the student linked to the actor.
func (s *LedgerService) ProgressForUser(ctx context.Context, actor *models.JWTClaims) (*dto.StudentProgress, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	student, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no student profile for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.cachedProgress(ctx, student)
}

// Compute derives the progress view of a student row.
func (s *LedgerService) Compute(student models.Student) *dto.StudentProgress {
	account := student.LedgerAccount()
	if err := ledger.CheckTotal(account, student.TotalPoints); err != nil {
		s.logger.Warn("student total points drifted", zap.String("student_id", student.ID), zap.Error(err))
	}
	progress := &dto.StudentProgress{
		Student:     dto.NewStudentSummary(student),
		Overall:     ledger.OverallProgress(account, s.table),
		Years:       ledger.YearsProgress(account, s.table),
		GeneratedAt: s.now(),
	}
	if current, ok := ledger.ParseYearOrdinal(student.CurrentYear); ok {
		p := ledger.YearProgress(account, current.Bucket(), s.table)
		progress.Current = &p
	}
	return progress
}

// CurrentYearProgress evaluates the bucket of the student's current ordinal.
func (s *LedgerService) CurrentYearProgress(student models.Student) (ledger.Progress, bool) {
	current, ok := ledger.ParseYearOrdinal(student.CurrentYear)
	if !ok {
		return ledger.Progress{}, false
	}
	return ledger.YearProgress(student.LedgerAccount(), current.Bucket(), s.table), true
}

func (s *LedgerService) cachedProgress(ctx context.Context, student *models.Student) (*dto.StudentProgress, error) {
	return remember(ctx, s.cache, LedgerCacheKey(student.ID), s.cacheTTL, func(context.Context) (*dto.StudentProgress, error) {
		return s.Compute(*student), nil
	})
}
