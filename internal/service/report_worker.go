package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/models"
	"github.com/noah-isme/activity-points-api/internal/repository"
	"github.com/noah-isme/activity-points-api/pkg/jobs"
)

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error)
}

// ReportWorker renders queued report jobs. It is the queue handler for the
// "reports" queue.
type ReportWorker struct {
	repo     reportJobStore
	exporter exportGenerator
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportWorker wires a worker.
func NewReportWorker(repo reportJobStore, exporter exportGenerator, metrics *MetricsService, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWorker{
		repo:     repo,
		exporter: exporter,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle claims and renders one job. A job another worker already claimed is
// skipped. A render failure puts the job back to QUEUED and returns the error
// so the queue can schedule a retry.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	log := w.logger.With(zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	if err := w.repo.Claim(ctx, job.ID, w.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("report job not claimable")
			return nil
		}
		return err
	}
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}

	result, renderErr := w.exporter.Generate(ctx, record)
	if renderErr != nil {
		if err := w.requeue(ctx, job.ID, renderErr.Error()); err != nil {
			log.Warn("requeue failed report job", zap.Error(err))
		}
		return renderErr
	}

	if err := w.finish(ctx, job.ID, result.URL); err != nil {
		log.Warn("mark report job finished", zap.Error(err))
		return err
	}
	w.metrics.RecordReportJob(models.ReportStatusFinished)
	log.Info("report job finished",
		zap.String("department_id", record.DepartmentID),
		zap.String("path", result.RelativePath),
	)
	return nil
}

func (w *ReportWorker) requeue(ctx context.Context, id, reason string) error {
	queued := models.ReportStatusQueued
	progress := 0
	return w.repo.Update(ctx, id, repository.UpdateReportJobParams{
		Status:       &queued,
		Progress:     &progress,
		ErrorMessage: &reason,
	})
}

func (w *ReportWorker) finish(ctx context.Context, id, url string) error {
	finished := models.ReportStatusFinished
	progress := 100
	now := w.now()
	noError := ""
	return w.repo.Update(ctx, id, repository.UpdateReportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	})
}

// MarkExhausted closes a job the queue stopped retrying.
func (w *ReportWorker) MarkExhausted(ctx context.Context, job jobs.Job, cause error) {
	msg := "report generation failed"
	if cause != nil {
		msg = cause.Error()
	}
	// Exhaustion can be reported while the queue shuts down.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := failJob(ctx, w.repo, job.ID, msg); err != nil {
		w.logger.Warn("mark report job failed", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	w.metrics.RecordReportJob(models.ReportStatusFailed)
}
