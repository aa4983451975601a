package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

// StudentService serves the department roster.
type StudentService struct {
	repo   reportStudentSource
	logger *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo reportStudentSource, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, logger: logger}
}

// List returns students of a department with pagination metadata. Reviewers
// are pinned to their own department.
func (s *StudentService) List(ctx context.Context, query dto.StudentQuery, actor *models.JWTClaims) ([]models.Student, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	departmentID := strings.TrimSpace(query.DepartmentID)
	if actor.Role == models.RoleFaculty || actor.Role == models.RoleHOD {
		departmentID = actor.DepartmentID
	}
	if !Authorize(actor.Role, ActionListStudents, PolicyContext{
		ActorID:              actor.UserID,
		ActorDepartmentID:    actor.DepartmentID,
		ResourceDepartmentID: departmentID,
	}) {
		return nil, nil, appErrors.ErrForbidden
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	filter := models.StudentFilter{
		DepartmentID: departmentID,
		Status:       models.StudentStatus(strings.ToUpper(strings.TrimSpace(string(query.Status)))),
		Search:       strings.TrimSpace(query.Search),
		Page:         page,
		PageSize:     size,
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list students", zap.String("department_id", departmentID), zap.Error(err))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
