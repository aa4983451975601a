package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

type academicYearStore interface {
	FindActive(ctx context.Context) (*models.AcademicYear, error)
	List(ctx context.Context) ([]models.AcademicYear, error)
	Start(ctx context.Context, year *models.AcademicYear) error
}

type studentTransitionStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByStatus(ctx context.Context, status models.StudentStatus) ([]models.Student, error)
	CountTransition(ctx context.Context, previousAcademicYear string) (models.StudentTransitionCounts, error)
	ApplyTransition(ctx context.Context, transition models.StudentTransition) error
	ResolveClearance(ctx context.Context, transition models.StudentTransition) error
}

type departmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// AcademicYearService runs the yearly promotion pass and keeps the year history.
type AcademicYearService struct {
	years        academicYearStore
	students     studentTransitionStore
	departments  departmentReader
	ledger       *LedgerService
	cache        *CacheService
	metrics      *MetricsService
	audit        auditTrail
	logger       *zap.Logger
	validator    *validator.Validate
	programYears int
	now          func() time.Time
}

// NewAcademicYearService constructs the scheduler. programYears is used for
// departments that do not declare their own program length.
func NewAcademicYearService(
	years academicYearStore,
	students studentTransitionStore,
	departments departmentReader,
	ledgerSvc *LedgerService,
	cache *CacheService,
	metrics *MetricsService,
	audit auditLogger,
	logger *zap.Logger,
	validate *validator.Validate,
	programYears int,
) *AcademicYearService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if programYears <= 0 || programYears > int(ledger.MaxOrdinal) {
		programYears = 4
	}
	return &AcademicYearService{
		years:        years,
		students:     students,
		departments:  departments,
		ledger:       ledgerSvc,
		cache:        cache,
		metrics:      metrics,
		audit:        auditTrail{store: audit, agent: "academic-year-service", logger: logger},
		logger:       logger,
		validator:    validate,
		programYears: programYears,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Active returns the current academic year.
func (s *AcademicYearService) Active(ctx context.Context) (*models.AcademicYear, error) {
	year, err := s.years.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no academic year has been started")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
	}
	return year, nil
}

// History lists every started academic year, newest first.
func (s *AcademicYearService) History(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.years.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, nil
}

// StartNewYear evaluates every active student against their current year
// requirement, then records label as the new active academic year. Student
// failures are collected and never abort the pass.
func (s *AcademicYearService) StartNewYear(ctx context.Context, req dto.StartAcademicYearRequest, actor *models.JWTClaims) (*models.TransitionSummary, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !Authorize(actor.Role, ActionStartAcademicYear, PolicyContext{ActorID: actor.UserID}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may start an academic year")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid academic year payload")
	}
	target, err := ledger.ParseAcademicYear(strings.TrimSpace(req.Year))
	if err != nil {
		return nil, fieldError("year", "academic_year", err.Error())
	}
	label := target.String()
	previous := target.Previous().String()

	active, err := s.years.FindActive(ctx)
	switch {
	case err == nil:
		previous = active.Label
		if active.Label == label {
			return nil, appErrors.ErrYearAlreadyStarted
		}
		if current, perr := ledger.ParseAcademicYear(active.Label); perr == nil && !current.Before(target) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "academic year must be after the active year "+active.Label)
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
	}

	students, err := s.students.ListByStatus(ctx, models.StudentStatusActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active students")
	}

	started := time.Now()
	summary := &models.TransitionSummary{AcademicYear: label, Errors: []models.TransitionError{}}
	lengths := make(map[string]int)
	for _, student := range students {
		outcome, err := s.transition(ctx, student, label, lengths)
		if err != nil {
			s.logger.Error("year transition failed for student",
				zap.String("student_id", student.ID),
				zap.String("academic_year", label),
				zap.Error(err),
			)
			summary.Errors = append(summary.Errors, models.TransitionError{StudentID: student.ID, Message: err.Error()})
			s.metrics.RecordTransition(TransitionFailed)
			continue
		}
		switch outcome {
		case TransitionPromoted:
			summary.Promoted++
		case TransitionGraduated:
			summary.Graduated++
		case TransitionHeldBack:
			summary.HeldBack++
		case TransitionSkipped:
			summary.Skipped++
		}
		s.metrics.RecordTransition(outcome)
	}

	// A resumed pass only sees the students an earlier attempt left ACTIVE,
	// so the snapshot is read back from the store.
	counts, err := s.students.CountTransition(ctx, previous)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count transitioned students")
	}

	startedBy := actor.UserID
	record := &models.AcademicYear{
		Label:                    label,
		StartedAt:                s.now(),
		TotalStudents:            counts.Total(),
		GraduatedStudents:        counts.Graduated,
		PendingClearanceStudents: counts.PendingClearance,
		StartedBy:                &startedBy,
	}
	if err := s.years.Start(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record academic year")
	}

	s.cache.Invalidate(ctx, ledgerCachePrefix+"*")
	s.metrics.ObserveTransition(time.Since(started))
	s.logger.Info("academic year started",
		zap.String("academic_year", label),
		zap.Int("promoted", summary.Promoted),
		zap.Int("graduated", summary.Graduated),
		zap.Int("held_back", summary.HeldBack),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", len(summary.Errors)),
	)
	s.audit.record(ctx, actor.UserID, models.AuditActionAcademicYearStart, "academic_year", record.ID, summary)
	return summary, nil
}

// transition moves one student and reports the outcome label.
func (s *AcademicYearService) transition(ctx context.Context, student models.Student, label string, lengths map[string]int) (string, error) {
	if student.CurrentAcademicYear == label {
		return TransitionSkipped, nil
	}
	progress, ok := s.ledger.CurrentYearProgress(student)
	if !ok {
		return "", errors.New("unknown current year " + student.CurrentYear)
	}

	change := models.StudentTransition{
		StudentID:                   student.ID,
		ExpectedCurrentAcademicYear: student.CurrentAcademicYear,
		CurrentYear:                 student.CurrentYear,
		CurrentAcademicYear:         student.CurrentAcademicYear,
	}
	outcome := TransitionHeldBack
	if progress.Met() {
		length, err := s.programLength(ctx, student.DepartmentID, lengths)
		if err != nil {
			return "", err
		}
		next := ledger.YearOrdinal(progress.Order).Next()
		if !next.Valid() || int(next) > length {
			change.Status = models.StudentStatusAlumni
			outcome = TransitionGraduated
		} else {
			change.Status = models.StudentStatusActive
			change.CurrentYear = next.String()
			change.CurrentAcademicYear = label
			outcome = TransitionPromoted
		}
	} else {
		change.Status = models.StudentStatusPendingClearance
	}

	if err := s.students.ApplyTransition(ctx, change); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TransitionSkipped, nil
		}
		return "", err
	}
	return outcome, nil
}

// ClearStudent resolves a pending clearance by advancing the student onto the
// active academic year, or graduating them past their program length.
func (s *AcademicYearService) ClearStudent(ctx context.Context, studentID string, actor *models.JWTClaims) (*models.Student, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !Authorize(actor.Role, ActionClearStudent, PolicyContext{ActorID: actor.UserID}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may clear students")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Status != models.StudentStatusPendingClearance {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is not pending clearance")
	}
	active, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := ledger.ParseYearOrdinal(student.CurrentYear)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student has an unknown current year")
	}
	length, err := s.programLength(ctx, student.DepartmentID, map[string]int{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	change := models.StudentTransition{
		StudentID:                   student.ID,
		ExpectedCurrentAcademicYear: student.CurrentAcademicYear,
		CurrentYear:                 student.CurrentYear,
		CurrentAcademicYear:         student.CurrentAcademicYear,
	}
	next := current.Next()
	if !next.Valid() || int(next) > length {
		change.Status = models.StudentStatusAlumni
	} else {
		change.Status = models.StudentStatusActive
		change.CurrentYear = next.String()
		change.CurrentAcademicYear = active.Label
	}
	if err := s.students.ResolveClearance(ctx, change); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is not pending clearance")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear student")
	}

	student.Status = change.Status
	student.CurrentYear = change.CurrentYear
	student.CurrentAcademicYear = change.CurrentAcademicYear
	s.cache.Forget(ctx, LedgerCacheKey(student.ID))
	s.audit.record(ctx, actor.UserID, models.AuditActionStudentClearance, "student", student.ID, map[string]interface{}{
		"status":              change.Status,
		"currentYear":         change.CurrentYear,
		"currentAcademicYear": change.CurrentAcademicYear,
	})
	return student, nil
}

func (s *AcademicYearService) programLength(ctx context.Context, departmentID string, lengths map[string]int) (int, error) {
	if length, ok := lengths[departmentID]; ok {
		return length, nil
	}
	length := s.programYears
	if s.departments != nil && departmentID != "" {
		department, err := s.departments.FindByID(ctx, departmentID)
		switch {
		case err == nil:
			length = department.ProgramLength(s.programYears)
		case errors.Is(err, sql.ErrNoRows):
		default:
			return 0, err
		}
	}
	if length > int(ledger.MaxOrdinal) {
		length = int(ledger.MaxOrdinal)
	}
	lengths[departmentID] = length
	return length, nil
}
