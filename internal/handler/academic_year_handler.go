package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
	"github.com/noah-isme/activity-points-api/pkg/response"
)

type academicYearService interface {
	Active(ctx context.Context) (*models.AcademicYear, error)
	History(ctx context.Context) ([]models.AcademicYear, error)
	StartNewYear(ctx context.Context, req dto.StartAcademicYearRequest, actor *models.JWTClaims) (*models.TransitionSummary, error)
	ClearStudent(ctx context.Context, studentID string, actor *models.JWTClaims) (*models.Student, error)
}

// AcademicYearHandler exposes academic year rollover endpoints.
type AcademicYearHandler struct {
	service academicYearService
}

// NewAcademicYearHandler constructs the handler.
func NewAcademicYearHandler(service academicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{service: service}
}

// Start godoc
// @Summary Start a new academic year
// @Description Activates the year and promotes, graduates or holds back every active student.
// @Tags Academic Year
// @Accept json
// @Produce json
// @Param payload body dto.StartAcademicYearRequest true "Academic year label, e.g. 2025-26"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /academic-year/start [post]
func (h *AcademicYearHandler) Start(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.StartAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid academic year payload"))
		return
	}
	summary, err := h.service.StartNewYear(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Active godoc
// @Summary Get the active academic year
// @Tags Academic Year
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academic-year/active [get]
func (h *AcademicYearHandler) Active(c *gin.Context) {
	year, err := h.service.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// History godoc
// @Summary List academic years
// @Tags Academic Year
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-year/history [get]
func (h *AcademicYearHandler) History(c *gin.Context) {
	years, err := h.service.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// Clear godoc
// @Summary Resolve a student's pending clearance
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/clearance [post]
func (h *AcademicYearHandler) Clear(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	student, err := h.service.ClearStudent(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
