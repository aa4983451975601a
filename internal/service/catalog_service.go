package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

const (
	categoriesCacheKey  = "catalog:categories"
	departmentsCacheKey = "catalog:departments"
)

type categoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

type departmentLister interface {
	List(ctx context.Context) ([]models.Department, error)
}

// CatalogService serves the read-mostly reference data: certificate
// categories and departments.
type CatalogService struct {
	categories  categoryLister
	departments departmentLister
	cache       *CacheService
	ttl         time.Duration
	logger      *zap.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(categories categoryLister, departments departmentLister, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{categories: categories, departments: departments, cache: cache, ttl: ttl, logger: logger}
}

// Categories lists every certificate category.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return remember(ctx, s.cache, categoriesCacheKey, s.ttl, func(ctx context.Context) ([]models.Category, error) {
		categories, err := s.categories.List(ctx)
		if err != nil {
			s.logger.Warn("list categories", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
		}
		if categories == nil {
			categories = []models.Category{}
		}
		return categories, nil
	})
}

// Departments lists every department with its program years.
func (s *CatalogService) Departments(ctx context.Context) ([]models.Department, error) {
	return remember(ctx, s.cache, departmentsCacheKey, s.ttl, func(ctx context.Context) ([]models.Department, error) {
		departments, err := s.departments.List(ctx)
		if err != nil {
			s.logger.Warn("list departments", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
		}
		if departments == nil {
			departments = []models.Department{}
		}
		return departments, nil
	})
}
