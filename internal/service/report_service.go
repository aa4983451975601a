package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/models"
	"github.com/noah-isme/activity-points-api/internal/repository"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
	"github.com/noah-isme/activity-points-api/pkg/jobs"
	"github.com/noah-isme/activity-points-api/pkg/storage"
)

const (
	recoverBatchSize = 50
	cleanupBatchSize = 100
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Claim(ctx context.Context, id string, startedAt time.Time) error
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ResetStale(ctx context.Context) (int64, error)
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
	ClearResult(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ReportService accepts department report requests and hands them to the
// background queue. Rendering happens in ReportWorker.
type ReportService struct {
	repo      reportJobStore
	queue     jobDispatcher
	exporter  *ExportService
	metrics   *MetricsService
	logger    *zap.Logger
	validator *validator.Validate
	cfg       ReportServiceConfig
}

// ReportServiceConfig controls how long finished reports stay downloadable.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload is an opened report file ready to stream.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// NewReportService wires the report service.
func NewReportService(repo reportJobStore, queue jobDispatcher, exporter *ExportService, metrics *MetricsService, logger *zap.Logger, validate *validator.Validate, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{repo: repo, queue: queue, exporter: exporter, metrics: metrics, logger: logger, validator: validate, cfg: cfg}
}

// CreateJob stores a QUEUED job for the department and dispatches it. A job
// the queue refuses is marked FAILED right away so it never looks pending.
func (s *ReportService) CreateJob(ctx context.Context, reportType models.ReportType, req dto.ReportRequest, actor *models.JWTClaims) (*dto.ReportJobResponse, error) {
	params, err := s.reportParams(reportType, req, actor)
	if err != nil {
		return nil, err
	}
	job := &models.ReportJob{
		Type:         reportType,
		DepartmentID: params.DepartmentID,
		Params:       params,
		Status:       models.ReportStatusQueued,
		CreatedBy:    actor.UserID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		if markErr := failJob(ctx, s.repo, job.ID, "report queue unavailable"); markErr != nil {
			s.logger.Warn("mark unqueued report failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		s.metrics.RecordReportJob(models.ReportStatusFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	s.metrics.RecordReportJob(models.ReportStatusQueued)
	s.logger.Info("report job queued",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("department_id", params.DepartmentID),
		zap.String("actor", actor.UserID),
	)
	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus reports progress to the requester and to administrators.
func (s *ReportService) GetStatus(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ReportStatusResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canReadReport(job, actor) {
		return nil, appErrors.ErrForbidden
	}
	out := &dto.ReportStatusResponse{ID: job.ID, Status: job.Status, Progress: job.Progress, ResultURL: job.ResultURL}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		out.Error = job.ErrorMessage
	}
	return out, nil
}

func canReadReport(job *models.ReportJob, actor *models.JWTClaims) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return true
	}
	return job.CreatedBy == actor.UserID
}

// ResolveDownload opens the file behind a signed export token. The token must
// be the one currently published on the job; a regenerated or cleared result
// invalidates older links.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	switch {
	case errors.Is(err, storage.ErrTokenExpired):
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link has expired")
	case err != nil:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	if job.ResultURL == nil || resultToken(*job.ResultURL) != token {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download token no longer valid")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReportDownload{File: file, Filename: filepath.Base(relPath), Format: job.Params.Format, ExpiresAt: expiresAt}, nil
}

func (s *ReportService) loadJob(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return job, nil
}

// RecoverPendingJobs puts work interrupted by a previous process back on the
// queue. Call it before the queue accepts new requests.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) {
	reset, err := s.repo.ResetStale(ctx)
	switch {
	case err != nil:
		s.logger.Warn("reset stale report jobs", zap.Error(err))
	case reset > 0:
		s.logger.Info("stale report jobs requeued", zap.Int64("count", reset))
	}
	pending, err := s.repo.ListQueued(ctx, recoverBatchSize)
	if err != nil {
		s.logger.Warn("list queued report jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Warn("requeue report job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// StartCleanup removes expired report files every CleanupInterval until ctx
// is cancelled.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ReportService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	for {
		expired, err := s.repo.ListExpired(ctx, cutoff, cleanupBatchSize)
		if err != nil {
			s.logger.Warn("list expired reports", zap.Error(err))
			return
		}
		for i := range expired {
			if err := s.purgeResult(ctx, &expired[i]); err != nil {
				s.logger.Warn("clear expired report", zap.String("job_id", expired[i].ID), zap.Error(err))
				return
			}
		}
		if len(expired) < cleanupBatchSize {
			break
		}
	}
	// Orphans from crashed renders have no job row pointing at them.
	if removed, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("sweep report directory", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Debug("report files swept", zap.Int("count", len(removed)))
	}
}

func (s *ReportService) purgeResult(ctx context.Context, job *models.ReportJob) error {
	if job.ResultURL != nil {
		if _, relPath, _, err := s.exporter.ParseToken(resultToken(*job.ResultURL), true); err == nil {
			if err := s.exporter.Delete(relPath); err != nil {
				s.logger.Warn("delete expired report file", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
	}
	return s.repo.ClearResult(ctx, job.ID)
}

func (s *ReportService) reportParams(reportType models.ReportType, req dto.ReportRequest, actor *models.JWTClaims) (models.ReportJobParams, error) {
	var params models.ReportJobParams
	if actor == nil {
		return params, appErrors.ErrUnauthorized
	}
	if reportType != models.ReportTypePoints && reportType != models.ReportTypeClearance {
		return params, appErrors.Clone(appErrors.ErrValidation, "unsupported report type")
	}
	if err := s.validator.Struct(req); err != nil {
		return params, validationError(err, "invalid report request")
	}

	params.DepartmentID = firstNonEmpty(strings.TrimSpace(req.DepartmentID), actor.DepartmentID)
	params.AcademicYear = strings.TrimSpace(req.AcademicYear)
	params.Format = req.Format
	if params.Format == "" {
		params.Format = models.ReportFormatCSV
	}

	if params.DepartmentID == "" {
		return params, fieldError("departmentId", "required", "departmentId is required")
	}
	if params.Format != models.ReportFormatCSV && params.Format != models.ReportFormatPDF {
		return params, fieldError("format", "oneof", "unsupported report format")
	}
	if params.AcademicYear != "" {
		if _, err := ledger.ParseAcademicYear(params.AcademicYear); err != nil {
			return params, fieldError("academicYear", "academic_year", err.Error())
		}
	}
	if !Authorize(actor.Role, ActionRequestReport, PolicyContext{
		ActorID:              actor.UserID,
		ActorDepartmentID:    actor.DepartmentID,
		ResourceDepartmentID: params.DepartmentID,
	}) {
		return params, appErrors.ErrForbidden
	}
	return params, nil
}

// resultToken is the last path segment of a published export URL.
func resultToken(url string) string {
	if url == "" {
		return ""
	}
	return path.Base(url)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// failJob closes a job as FAILED with msg.
func failJob(ctx context.Context, repo reportJobStore, id, msg string) error {
	failed := models.ReportStatusFailed
	progress := 100
	now := time.Now().UTC()
	return repo.Update(ctx, id, repository.UpdateReportJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	})
}
