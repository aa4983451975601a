package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
	"github.com/noah-isme/activity-points-api/pkg/response"
)

type uploadWindowService interface {
	Status(ctx context.Context, departmentID string) (*models.UploadWindowStatus, error)
	Toggle(ctx context.Context, req dto.ToggleUploadWindowRequest, actor *models.JWTClaims) (*models.UploadWindowStatus, error)
}

// UploadWindowHandler exposes the per-department submission gate.
type UploadWindowHandler struct {
	service uploadWindowService
}

// NewUploadWindowHandler constructs the handler.
func NewUploadWindowHandler(service uploadWindowService) *UploadWindowHandler {
	return &UploadWindowHandler{service: service}
}

// Status godoc
// @Summary Upload window status
// @Description Defaults to the caller's department.
// @Tags Upload Window
// @Produce json
// @Param departmentId query string false "Department ID"
// @Success 200 {object} response.Envelope
// @Router /upload-lock/status [get]
func (h *UploadWindowHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	departmentID := strings.TrimSpace(c.Query("departmentId"))
	if departmentID == "" {
		departmentID = claims.DepartmentID
	}
	status, err := h.service.Status(c.Request.Context(), departmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Toggle godoc
// @Summary Open or close the upload window
// @Description Without isActive the current state is flipped.
// @Tags Upload Window
// @Accept json
// @Produce json
// @Param payload body dto.ToggleUploadWindowRequest true "Toggle payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /upload-lock/toggle [post]
func (h *UploadWindowHandler) Toggle(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ToggleUploadWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload window payload"))
		return
	}
	status, err := h.service.Toggle(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
