package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

type academicYearServiceMock struct {
	active    *models.AcademicYear
	history   []models.AcademicYear
	summary   *models.TransitionSummary
	student   *models.Student
	err       error
	lastStart dto.StartAcademicYearRequest
	lastClear string
}

func (m *academicYearServiceMock) Active(ctx context.Context) (*models.AcademicYear, error) {
	return m.active, m.err
}

func (m *academicYearServiceMock) History(ctx context.Context) ([]models.AcademicYear, error) {
	return m.history, m.err
}

func (m *academicYearServiceMock) StartNewYear(ctx context.Context, req dto.StartAcademicYearRequest, actor *models.JWTClaims) (*models.TransitionSummary, error) {
	m.lastStart = req
	return m.summary, m.err
}

func (m *academicYearServiceMock) ClearStudent(ctx context.Context, studentID string, actor *models.JWTClaims) (*models.Student, error) {
	m.lastClear = studentID
	return m.student, m.err
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}
}

func TestAcademicYearHandlerStart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &academicYearServiceMock{summary: &models.TransitionSummary{AcademicYear: "2025-26", Promoted: 3}}
	handler := NewAcademicYearHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/academic-year/start", []byte(`{"year":"2025-26"}`))
	withClaims(c, adminClaims())

	handler.Start(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-26", mockSvc.lastStart.Year)
	assert.Contains(t, w.Body.String(), `"promoted":3`)
}

func TestAcademicYearHandlerStartAlreadyStarted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAcademicYearHandler(&academicYearServiceMock{err: appErrors.ErrYearAlreadyStarted})

	c, w := newGinContext(http.MethodPost, "/academic-year/start", []byte(`{"year":"2025-26"}`))
	withClaims(c, adminClaims())

	handler.Start(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), appErrors.ErrYearAlreadyStarted.Code)
}

func TestAcademicYearHandlerStartInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAcademicYearHandler(&academicYearServiceMock{})

	c, w := newGinContext(http.MethodPost, "/academic-year/start", []byte(`{"year":`))
	withClaims(c, adminClaims())

	handler.Start(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcademicYearHandlerActiveAndHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &academicYearServiceMock{
		active:  &models.AcademicYear{ID: "ay-2", Label: "2025-26", IsActive: true},
		history: []models.AcademicYear{{ID: "ay-2", Label: "2025-26"}, {ID: "ay-1", Label: "2024-25"}},
	}
	handler := NewAcademicYearHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/academic-year/active", nil)
	handler.Active(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2025-26")

	c, w = newGinContext(http.MethodGet, "/academic-year/history", nil)
	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2024-25")
}

func TestAcademicYearHandlerClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &academicYearServiceMock{student: &models.Student{ID: "stu-2", Status: models.StudentStatusAlumni}}
	handler := NewAcademicYearHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/students/stu-2/clearance", nil)
	c.Params = gin.Params{{Key: "id", Value: "stu-2"}}
	withClaims(c, adminClaims())

	handler.Clear(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stu-2", mockSvc.lastClear)
}
