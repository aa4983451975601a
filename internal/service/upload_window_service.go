package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

type uploadWindowStore interface {
	FindByDepartment(ctx context.Context, departmentID string) (*models.UploadWindow, error)
	Save(ctx context.Context, window *models.UploadWindow) error
}

// UploadWindowService controls the per-department submission gate.
type UploadWindowService struct {
	repo        uploadWindowStore
	audit       auditTrail
	logger      *zap.Logger
	defaultOpen bool
	now         func() time.Time
}

// NewUploadWindowService constructs the service. defaultOpen is the state of
// departments that were never configured.
func NewUploadWindowService(repo uploadWindowStore, audit auditLogger, logger *zap.Logger, defaultOpen bool) *UploadWindowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadWindowService{
		repo:        repo,
		audit:       auditTrail{store: audit, agent: "upload-window-service", logger: logger},
		logger:      logger,
		defaultOpen: defaultOpen,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// IsOpen reports whether departmentID accepts submissions.
func (s *UploadWindowService) IsOpen(ctx context.Context, departmentID string) (bool, error) {
	window, _, err := s.current(ctx, departmentID)
	if err != nil {
		return false, err
	}
	return window.IsOpen(), nil
}

// Status returns the wire view of a department's gate.
func (s *UploadWindowService) Status(ctx context.Context, departmentID string) (*models.UploadWindowStatus, error) {
	departmentID = strings.TrimSpace(departmentID)
	if departmentID == "" {
		return nil, fieldError("departmentId", "required", "departmentId is required")
	}
	window, stored, err := s.current(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload window")
	}
	return &models.UploadWindowStatus{
		DepartmentID: departmentID,
		IsActive:     window.IsOpen(),
		DeadlineAt:   window.DeadlineAt,
		Stored:       stored,
	}, nil
}

// Open reopens the gate and clears any deadline.
func (s *UploadWindowService) Open(ctx context.Context, departmentID string, actor *models.JWTClaims) (*models.UploadWindowStatus, error) {
	return s.save(ctx, models.OpenWindow(strings.TrimSpace(departmentID)), actor)
}

// Close shuts the gate. deadline is stored as a marker only.
func (s *UploadWindowService) Close(ctx context.Context, departmentID string, deadline *time.Time, actor *models.JWTClaims) (*models.UploadWindowStatus, error) {
	return s.save(ctx, models.ClosedWindow(strings.TrimSpace(departmentID), deadline), actor)
}

// Toggle applies the requested state, or flips the current one when none is given.
func (s *UploadWindowService) Toggle(ctx context.Context, req dto.ToggleUploadWindowRequest, actor *models.JWTClaims) (*models.UploadWindowStatus, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	departmentID := strings.TrimSpace(req.DepartmentID)
	if departmentID == "" {
		departmentID = actor.DepartmentID
	}
	if departmentID == "" {
		return nil, fieldError("departmentId", "required", "departmentId is required")
	}

	open := false
	if req.IsActive != nil {
		open = *req.IsActive
	} else {
		current, _, err := s.current(ctx, departmentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload window")
		}
		open = !current.IsOpen()
	}
	if open {
		return s.Open(ctx, departmentID, actor)
	}
	return s.Close(ctx, departmentID, req.DeadlineAt, actor)
}

func (s *UploadWindowService) save(ctx context.Context, window models.UploadWindow, actor *models.JWTClaims) (*models.UploadWindowStatus, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if window.DepartmentID == "" {
		return nil, fieldError("departmentId", "required", "departmentId is required")
	}
	if !Authorize(actor.Role, ActionToggleUploadWindow, PolicyContext{
		ActorID:              actor.UserID,
		ActorDepartmentID:    actor.DepartmentID,
		ResourceDepartmentID: window.DepartmentID,
	}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to change this upload window")
	}

	updatedBy := actor.UserID
	window.UpdatedBy = &updatedBy
	window.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, &window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save upload window")
	}

	s.logger.Info("upload window changed",
		zap.String("department_id", window.DepartmentID),
		zap.String("state", string(window.State)),
		zap.String("actor", actor.UserID),
	)
	s.audit.record(ctx, actor.UserID, models.AuditActionUploadWindowChange, "upload_window", window.DepartmentID, window)
	return &models.UploadWindowStatus{
		DepartmentID: window.DepartmentID,
		IsActive:     window.IsOpen(),
		DeadlineAt:   window.DeadlineAt,
		Stored:       true,
	}, nil
}

// current returns the stored window, or the default when none exists.
func (s *UploadWindowService) current(ctx context.Context, departmentID string) (models.UploadWindow, bool, error) {
	window, err := s.repo.FindByDepartment(ctx, departmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if s.defaultOpen {
				return models.OpenWindow(departmentID), false, nil
			}
			return models.ClosedWindow(departmentID, nil), false, nil
		}
		return models.UploadWindow{}, false, err
	}
	return *window, true, nil
}
