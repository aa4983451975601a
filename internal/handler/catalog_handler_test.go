package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-points-api/internal/models"
	"github.com/noah-isme/activity-points-api/internal/service"
)

type catalogServiceMock struct {
	categories  []models.Category
	departments []models.Department
	err         error
}

func (m *catalogServiceMock) Categories(ctx context.Context) ([]models.Category, error) {
	return m.categories, m.err
}

func (m *catalogServiceMock) Departments(ctx context.Context) ([]models.Department, error) {
	return m.departments, m.err
}

func TestCatalogHandlerCategories(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCatalogHandler(&catalogServiceMock{categories: []models.Category{{ID: "sports", Name: "Sports"}}})

	c, w := newGinContext(http.MethodGet, "/categories", nil)
	handler.Categories(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Sports"`)
}

func TestCatalogHandlerDepartments(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCatalogHandler(&catalogServiceMock{departments: []models.Department{{ID: "cse", Name: "Computer Science"}}})

	c, w := newGinContext(http.MethodGet, "/departments", nil)
	handler.Departments(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Computer Science")
}

func TestCatalogHandlerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCatalogHandler(&catalogServiceMock{err: errors.New("db down")})

	c, w := newGinContext(http.MethodGet, "/categories", nil)
	handler.Categories(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})

	c, w := newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	assert.Contains(t, w.Body.String(), "connection refused")

	handler = NewMetricsHandler(nil, map[string]ReadinessCheck{"database": func(ctx context.Context) error { return nil }})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.RecordSubmission()
	handler := NewMetricsHandler(metrics, nil)

	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "certificate")

	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
