package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/models"
	"github.com/noah-isme/activity-points-api/internal/repository"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
	"github.com/noah-isme/activity-points-api/pkg/storage"
)

type certificateStore interface {
	Create(ctx context.Context, certificate *models.Certificate) error
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, int, error)
	Approve(ctx context.Context, studentID string, decision models.CertificateDecision) error
	Reject(ctx context.Context, decision models.CertificateDecision) error
	DeleteOwned(ctx context.Context, id, studentID string) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type categoryReader interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type auditHistory interface {
	ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
}

type activeYearReader interface {
	FindActive(ctx context.Context) (*models.AcademicYear, error)
}

// UploadGate answers whether a department currently accepts submissions.
type UploadGate interface {
	IsOpen(ctx context.Context, departmentID string) (bool, error)
}

type certificateFiles interface {
	SaveStream(filename string, r io.Reader, limit int64) (string, int64, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// CertificateConfig bounds uploads and faculty allocations.
type CertificateConfig struct {
	APIPrefix        string
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	FacultyMaxPoints int
}

// CertificateServiceDeps groups collaborators of the certificate workflow.
type CertificateServiceDeps struct {
	Certificates certificateStore
	Students     studentReader
	Categories   categoryReader
	Gate         UploadGate
	Years        activeYearReader
	Files        certificateFiles
	Signer       *storage.SignedURLSigner
	Audit        auditLogger
	History      auditHistory
	Cache        *CacheService
	Metrics      *MetricsService
	Logger       *zap.Logger
	Validator    *validator.Validate
}

// CertificateService drives certificates through review and credits the ledger.
type CertificateService struct {
	certificates certificateStore
	students     studentReader
	categories   categoryReader
	gate         UploadGate
	years        activeYearReader
	files        certificateFiles
	signer       *storage.SignedURLSigner
	audit        auditTrail
	history      auditHistory
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
	validator    *validator.Validate
	cfg          CertificateConfig
	now          func() time.Time
}

// NewCertificateService constructs the workflow.
func NewCertificateService(deps CertificateServiceDeps, cfg CertificateConfig) *CertificateService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/jpeg", "image/png"}
	}
	return &CertificateService{
		certificates: deps.Certificates,
		students:     deps.Students,
		categories:   deps.Categories,
		gate:         deps.Gate,
		years:        deps.Years,
		files:        deps.Files,
		signer:       deps.Signer,
		audit:        auditTrail{store: deps.Audit, agent: "certificate-service", logger: deps.Logger},
		history:      deps.History,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		validator:    deps.Validator,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores the scan and creates a pending certificate for the acting student.
func (s *CertificateService) Submit(ctx context.Context, req dto.SubmitCertificateRequest, upload dto.CertificateUpload, actor *models.JWTClaims) (*models.Certificate, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid certificate payload")
	}
	mimeType, err := s.checkUpload(upload)
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no student profile for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !Authorize(actor.Role, ActionSubmitCertificate, PolicyContext{ActorID: actor.UserID, OwnerUserID: student.UserID}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students may submit certificates")
	}
	if student.Status == models.StudentStatusAlumni {
		return nil, appErrors.ErrLedgerFrozen
	}

	open, err := s.gate.IsOpen(ctx, student.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload window")
	}
	if !open {
		return nil, appErrors.ErrUploadWindowClosed
	}

	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCategoryLevel, "category does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	level := strings.TrimSpace(req.Level)
	if _, ok := category.PointsFor(level); !ok {
		return nil, appErrors.ErrInvalidCategoryLevel
	}

	academicYear := student.CurrentAcademicYear
	if active, err := s.years.FindActive(ctx); err == nil {
		academicYear = active.Label
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
	}

	id := uuid.NewString()
	name := filepath.ToSlash(filepath.Join("certificates", student.ID, id+strings.ToLower(filepath.Ext(upload.Filename))))
	path, written, err := s.files.SaveStream(name, upload.Reader, s.cfg.MaxFileSizeBytes)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, fieldError("file", fmt.Sprintf("max=%d", s.cfg.MaxFileSizeBytes), "certificate file is too large")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate file")
	}

	certificate := &models.Certificate{
		ID:           id,
		StudentID:    student.ID,
		DepartmentID: student.DepartmentID,
		CategoryID:   category.ID,
		Level:        level,
		Title:        strings.TrimSpace(req.Title),
		Organizer:    req.Organizer,
		EventDate:    req.EventDate,
		Description:  req.Description,
		FilePath:     path,
		MimeType:     mimeType,
		SizeBytes:    written,
		Status:       models.CertificateStatusPending,
		AcademicYear: academicYear,
		CreatedAt:    s.now(),
	}
	if err := s.certificates.Create(ctx, certificate); err != nil {
		s.removeFile(path)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create certificate")
	}

	s.metrics.RecordSubmission()
	s.audit.record(ctx, actor.UserID, models.AuditActionCertificateSubmit, "certificate", certificate.ID, map[string]interface{}{
		"categoryId":   certificate.CategoryID,
		"level":        certificate.Level,
		"academicYear": certificate.AcademicYear,
	})
	return certificate, nil
}

// Approve allocates points and credits the student's bucket atomically.
func (s *CertificateService) Approve(ctx context.Context, id string, req dto.ApproveCertificateRequest, actor *models.JWTClaims) (*models.Certificate, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid approval payload")
	}
	certificate, student, err := s.loadForReview(ctx, id)
	if err != nil {
		return nil, err
	}

	points, err := s.allocation(ctx, certificate, req.PointsOverride)
	if err != nil {
		return nil, err
	}
	pc := s.reviewContext(actor, certificate)
	pc.Points = points
	pc.PointsOverride = req.PointsOverride != nil
	if !Authorize(actor.Role, ActionApproveCertificate, pc) {
		s.metrics.RecordReview(models.CertificateStatusApproved, actor.Role, appErrors.ErrReviewerForbidden.Code, 0)
		return nil, appErrors.ErrReviewerForbidden
	}
	if certificate.Status != models.CertificateStatusPending {
		s.metrics.RecordReview(models.CertificateStatusApproved, actor.Role, appErrors.ErrAlreadyProcessed.Code, 0)
		return nil, appErrors.ErrAlreadyProcessed
	}
	if student.Status == models.StudentStatusAlumni {
		return nil, appErrors.ErrLedgerFrozen
	}

	bucket, err := ledger.CreditBucket(student.LedgerAccount(), certificate.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "certificate academic year is outside the student's tenure")
	}

	decision := models.CertificateDecision{
		CertificateID: certificate.ID,
		Status:        models.CertificateStatusApproved,
		Points:        points,
		Bucket:        string(bucket),
		ReviewedBy:    actor.UserID,
		ReviewerRole:  actor.Role,
		ReviewedAt:    s.now(),
	}
	if err := s.certificates.Approve(ctx, student.ID, decision); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			s.metrics.RecordReview(models.CertificateStatusApproved, actor.Role, appErrors.ErrAlreadyProcessed.Code, 0)
			return nil, appErrors.ErrAlreadyProcessed
		case errors.Is(err, repository.ErrLedgerNotWritable):
			return nil, appErrors.ErrLedgerFrozen
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve certificate")
	}
	applyDecision(certificate, decision)

	s.cache.Forget(ctx, LedgerCacheKey(student.ID))
	s.metrics.RecordReview(models.CertificateStatusApproved, actor.Role, "ok", points)
	s.audit.record(ctx, actor.UserID, models.AuditActionCertificateApprove, "certificate", certificate.ID, map[string]interface{}{
		"studentId": student.ID,
		"points":    points,
		"bucket":    decision.Bucket,
		"override":  req.PointsOverride != nil,
	})
	return certificate, nil
}

// Reject closes a pending certificate without touching the ledger.
func (s *CertificateService) Reject(ctx context.Context, id string, req dto.RejectCertificateRequest, actor *models.JWTClaims) (*models.Certificate, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid rejection payload")
	}
	certificate, _, err := s.loadForReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Authorize(actor.Role, ActionRejectCertificate, s.reviewContext(actor, certificate)) {
		s.metrics.RecordReview(models.CertificateStatusRejected, actor.Role, appErrors.ErrReviewerForbidden.Code, 0)
		return nil, appErrors.ErrReviewerForbidden
	}
	if certificate.Status != models.CertificateStatusPending {
		s.metrics.RecordReview(models.CertificateStatusRejected, actor.Role, appErrors.ErrAlreadyProcessed.Code, 0)
		return nil, appErrors.ErrAlreadyProcessed
	}

	decision := models.CertificateDecision{
		CertificateID:   certificate.ID,
		Status:          models.CertificateStatusRejected,
		RejectionReason: optionalString(req.Reason),
		ReviewedBy:      actor.UserID,
		ReviewerRole:    actor.Role,
		ReviewedAt:      s.now(),
	}
	if err := s.certificates.Reject(ctx, decision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordReview(models.CertificateStatusRejected, actor.Role, appErrors.ErrAlreadyProcessed.Code, 0)
			return nil, appErrors.ErrAlreadyProcessed
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject certificate")
	}
	applyDecision(certificate, decision)

	s.metrics.RecordReview(models.CertificateStatusRejected, actor.Role, "ok", 0)
	s.audit.record(ctx, actor.UserID, models.AuditActionCertificateReject, "certificate", certificate.ID, map[string]interface{}{
		"reason": req.Reason,
	})
	return certificate, nil
}

// Delete withdraws a pending or rejected certificate owned by the acting student.
func (s *CertificateService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	certificate, err := s.findCertificate(ctx, id)
	if err != nil {
		return err
	}
	student, err := s.students.FindByID(ctx, certificate.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !Authorize(actor.Role, ActionDeleteCertificate, PolicyContext{ActorID: actor.UserID, OwnerUserID: student.UserID}) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owner may delete a certificate")
	}
	if !certificate.Deletable() {
		return appErrors.Clone(appErrors.ErrConflict, "approved certificates cannot be deleted")
	}
	if err := s.certificates.DeleteOwned(ctx, certificate.ID, student.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "certificate can no longer be deleted")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete certificate")
	}
	s.removeFile(certificate.FilePath)
	s.audit.record(ctx, actor.UserID, models.AuditActionCertificateDelete, "certificate", certificate.ID, map[string]interface{}{
		"status": certificate.Status,
	})
	return nil
}

// Get returns a certificate the actor may view.
func (s *CertificateService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Certificate, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	certificate, err := s.findCertificate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, certificate, actor); err != nil {
		return nil, err
	}
	return certificate, nil
}

// History returns the audit entries of a certificate the actor may view.
func (s *CertificateService) History(ctx context.Context, id string, actor *models.JWTClaims) ([]models.AuditLog, error) {
	certificate, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []models.AuditLog{}, nil
	}
	logs, err := s.history.ListByResource(ctx, "certificate", certificate.ID, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate history")
	}
	return logs, nil
}

// List returns certificates scoped to what the actor may see.
func (s *CertificateService) List(ctx context.Context, query dto.CertificateQuery, actor *models.JWTClaims) ([]models.Certificate, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.CertificateFilter{
		Status:       models.CertificateStatus(strings.ToUpper(string(query.Status))),
		DepartmentID: query.DepartmentID,
		StudentID:    query.StudentID,
		AcademicYear: query.AcademicYear,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleSuperAdmin:
	case models.RoleFaculty, models.RoleHOD:
		if actor.DepartmentID == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "reviewer has no department")
		}
		filter.DepartmentID = actor.DepartmentID
	case models.RoleStudent:
		student, err := s.students.FindByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "no student profile for this account")
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		filter.StudentID = student.ID
		filter.DepartmentID = ""
	default:
		return nil, nil, appErrors.ErrForbidden
	}

	certificates, total, err := s.certificates.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return certificates, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// DownloadURL issues a signed link to the stored scan.
func (s *CertificateService) DownloadURL(ctx context.Context, id string, actor *models.JWTClaims) (*dto.CertificateDownloadResponse, error) {
	certificate, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signing is not configured")
	}
	token, expiresAt, err := s.signer.Generate(certificate.ID, certificate.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}
	return &dto.CertificateDownloadResponse{
		URL:       fmt.Sprintf("%s/certificates/%s/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), certificate.ID, url.QueryEscape(token)),
		ExpiresAt: expiresAt,
	}, nil
}

// Download opens the scan referenced by a signed token.
func (s *CertificateService) Download(ctx context.Context, id, token string) (*models.Certificate, *os.File, error) {
	if s.signer == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrInternal, "download signing is not configured")
	}
	resourceID, path, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	if resourceID != id {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match certificate")
	}
	certificate, err := s.findCertificate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if certificate.FilePath != path {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match certificate")
	}
	file, err := s.files.Open(path)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "certificate file not found")
	}
	return certificate, file, nil
}

func (s *CertificateService) checkUpload(upload dto.CertificateUpload) (string, error) {
	if upload.Reader == nil || upload.Size == 0 {
		return "", fieldError("file", "required", "certificate file is required")
	}
	if upload.Size > s.cfg.MaxFileSizeBytes {
		return "", fieldError("file", fmt.Sprintf("max=%d", s.cfg.MaxFileSizeBytes), "certificate file is too large")
	}
	mimeType := strings.ToLower(strings.TrimSpace(strings.Split(upload.ContentType, ";")[0]))
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, mimeType) {
			return mimeType, nil
		}
	}
	return "", fieldError("file", "mime", fmt.Sprintf("unsupported file type %q", mimeType))
}

func (s *CertificateService) loadForReview(ctx context.Context, id string) (*models.Certificate, *models.Student, error) {
	certificate, err := s.findCertificate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	student, err := s.students.FindByID(ctx, certificate.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return certificate, student, nil
}

func (s *CertificateService) findCertificate(ctx context.Context, id string) (*models.Certificate, error) {
	certificate, err := s.certificates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	return certificate, nil
}

// allocation is the override when given, else the category level value.
func (s *CertificateService) allocation(ctx context.Context, certificate *models.Certificate, override *int) (int, error) {
	if override != nil {
		return *override, nil
	}
	category, err := s.categories.FindByID(ctx, certificate.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrInvalidCategoryLevel, "category does not exist")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	points, ok := category.PointsFor(certificate.Level)
	if !ok {
		return 0, appErrors.ErrInvalidCategoryLevel
	}
	return points, nil
}

func (s *CertificateService) reviewContext(actor *models.JWTClaims, certificate *models.Certificate) PolicyContext {
	return PolicyContext{
		ActorID:              actor.UserID,
		ActorDepartmentID:    actor.DepartmentID,
		ResourceDepartmentID: certificate.DepartmentID,
		FacultyMaxPoints:     s.cfg.FacultyMaxPoints,
	}
}

func (s *CertificateService) authorizeView(ctx context.Context, certificate *models.Certificate, actor *models.JWTClaims) error {
	pc := PolicyContext{
		ActorID:              actor.UserID,
		ActorDepartmentID:    actor.DepartmentID,
		ResourceDepartmentID: certificate.DepartmentID,
	}
	if actor.Role == models.RoleStudent {
		student, err := s.students.FindByID(ctx, certificate.StudentID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if student != nil {
			pc.OwnerUserID = student.UserID
		}
	}
	if !Authorize(actor.Role, ActionViewCertificate, pc) {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *CertificateService) removeFile(path string) {
	if s.files == nil || path == "" {
		return
	}
	if err := s.files.Delete(path); err != nil {
		s.logger.Warn("failed to remove certificate file", zap.String("path", path), zap.Error(err))
	}
}

func applyDecision(certificate *models.Certificate, decision models.CertificateDecision) {
	certificate.Status = decision.Status
	reviewer := decision.ReviewedBy
	role := decision.ReviewerRole
	reviewedAt := decision.ReviewedAt
	certificate.ReviewedBy = &reviewer
	certificate.ReviewerRole = &role
	certificate.ReviewedAt = &reviewedAt
	if decision.Status == models.CertificateStatusApproved {
		points := decision.Points
		bucket := decision.Bucket
		certificate.PointsAllocated = &points
		certificate.Bucket = &bucket
	}
	if decision.RejectionReason != nil {
		certificate.RejectionReason = decision.RejectionReason
	}
}
