package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
	"github.com/noah-isme/activity-points-api/pkg/response"
)

type studentRoster interface {
	List(ctx context.Context, query dto.StudentQuery, actor *models.JWTClaims) ([]models.Student, *models.Pagination, error)
}

type progressReader interface {
	Progress(ctx context.Context, studentID string, actor *models.JWTClaims) (*dto.StudentProgress, error)
	ProgressForUser(ctx context.Context, actor *models.JWTClaims) (*dto.StudentProgress, error)
}

// StudentHandler exposes the roster and points progress endpoints.
type StudentHandler struct {
	students studentRoster
	progress progressReader
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentRoster, progress progressReader) *StudentHandler {
	return &StudentHandler{students: students, progress: progress}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param departmentId query string false "Department (admins only)"
// @Param status query string false "ACTIVE, PENDING_CLEARANCE or ALUMNI"
// @Param search query string false "Search by name or register number"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.StudentQuery{
		DepartmentID: strings.TrimSpace(c.Query("departmentId")),
		Status:       models.StudentStatus(c.Query("status")),
		Search:       strings.TrimSpace(c.Query("search")),
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	students, pagination, err := h.students.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Progress godoc
// @Summary Student points progress
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/progress [get]
func (h *StudentHandler) Progress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	progress, err := h.progress.Progress(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// MyProgress godoc
// @Summary Points progress of the signed in student
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/me/progress [get]
func (h *StudentHandler) MyProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	progress, err := h.progress.ProgressForUser(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}
