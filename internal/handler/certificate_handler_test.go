package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-points-api/internal/dto"
	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
	"github.com/noah-isme/activity-points-api/pkg/response"
)

type certificateServiceMock struct {
	certificate  *models.Certificate
	certificates []models.Certificate
	pagination   *models.Pagination
	link         *dto.CertificateDownloadResponse
	history      []models.AuditLog
	file         *os.File
	err          error

	lastSubmit  dto.SubmitCertificateRequest
	lastUpload  []byte
	lastApprove dto.ApproveCertificateRequest
	lastReject  dto.RejectCertificateRequest
	lastQuery   dto.CertificateQuery
	lastID      string
}

func (m *certificateServiceMock) Submit(ctx context.Context, req dto.SubmitCertificateRequest, upload dto.CertificateUpload, actor *models.JWTClaims) (*models.Certificate, error) {
	m.lastSubmit = req
	if upload.Reader != nil {
		m.lastUpload, _ = io.ReadAll(upload.Reader)
	}
	return m.certificate, m.err
}

func (m *certificateServiceMock) Approve(ctx context.Context, id string, req dto.ApproveCertificateRequest, actor *models.JWTClaims) (*models.Certificate, error) {
	m.lastID = id
	m.lastApprove = req
	return m.certificate, m.err
}

func (m *certificateServiceMock) Reject(ctx context.Context, id string, req dto.RejectCertificateRequest, actor *models.JWTClaims) (*models.Certificate, error) {
	m.lastID = id
	m.lastReject = req
	return m.certificate, m.err
}

func (m *certificateServiceMock) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	m.lastID = id
	return m.err
}

func (m *certificateServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Certificate, error) {
	m.lastID = id
	return m.certificate, m.err
}

func (m *certificateServiceMock) List(ctx context.Context, query dto.CertificateQuery, actor *models.JWTClaims) ([]models.Certificate, *models.Pagination, error) {
	m.lastQuery = query
	return m.certificates, m.pagination, m.err
}

func (m *certificateServiceMock) History(ctx context.Context, id string, actor *models.JWTClaims) ([]models.AuditLog, error) {
	m.lastID = id
	return m.history, m.err
}

func (m *certificateServiceMock) DownloadURL(ctx context.Context, id string, actor *models.JWTClaims) (*dto.CertificateDownloadResponse, error) {
	m.lastID = id
	return m.link, m.err
}

func (m *certificateServiceMock) Download(ctx context.Context, id, token string) (*models.Certificate, *os.File, error) {
	m.lastID = id
	return m.certificate, m.file, m.err
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-stu-1", Role: models.RoleStudent, DepartmentID: "cse"}
}

func multipartSubmission(t *testing.T, fields map[string]string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if content != nil {
		part, err := writer.CreateFormFile("file", "marathon.pdf")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCertificateHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &certificateServiceMock{certificate: &models.Certificate{ID: "cert-1", Status: models.CertificateStatusPending}}
	handler := NewCertificateHandler(mockSvc)

	body, contentType := multipartSubmission(t, map[string]string{
		"categoryId": "sports",
		"level":      "National",
		"title":      "Marathon",
		"eventDate":  "2024-11-02",
	}, []byte("%PDF-1.4 scan"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/certificates", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	withClaims(c, studentClaims())

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sports", mockSvc.lastSubmit.CategoryID)
	assert.Equal(t, "National", mockSvc.lastSubmit.Level)
	require.NotNil(t, mockSvc.lastSubmit.EventDate)
	assert.Equal(t, 2024, mockSvc.lastSubmit.EventDate.Year())
	assert.Equal(t, []byte("%PDF-1.4 scan"), mockSvc.lastUpload)
}

func TestCertificateHandlerSubmitRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCertificateHandler(&certificateServiceMock{})

	body, contentType := multipartSubmission(t, map[string]string{"categoryId": "sports", "title": "Marathon"}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/certificates", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	withClaims(c, studentClaims())

	handler.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCertificateHandlerSubmitWindowClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCertificateHandler(&certificateServiceMock{err: appErrors.ErrUploadWindowClosed})

	body, contentType := multipartSubmission(t, map[string]string{"categoryId": "sports", "title": "Marathon"}, []byte("scan"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/certificates", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	withClaims(c, studentClaims())

	handler.Submit(c)
	require.Equal(t, http.StatusConflict, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrUploadWindowClosed.Code, envelope.Error.Code)
}

func TestCertificateHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &certificateServiceMock{
		certificates: []models.Certificate{{ID: "cert-1"}},
		pagination:   &models.Pagination{Page: 2, PageSize: 10, TotalCount: 11},
	}
	handler := NewCertificateHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/certificates?status=PENDING&page=2&pageSize=10", nil)
	withClaims(c, &models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD, DepartmentID: "cse"})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.CertificateStatusPending, mockSvc.lastQuery.Status)
	assert.Equal(t, 2, mockSvc.lastQuery.Page)
	assert.Equal(t, 10, mockSvc.lastQuery.PageSize)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 11, envelope.Pagination.TotalCount)
}

func TestCertificateHandlerApproveWithOverride(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &certificateServiceMock{certificate: &models.Certificate{ID: "cert-1", Status: models.CertificateStatusApproved}}
	handler := NewCertificateHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/certificates/cert-1/approve", []byte(`{"pointsOverride":35}`))
	c.Params = gin.Params{{Key: "id", Value: "cert-1"}}
	withClaims(c, &models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD, DepartmentID: "cse"})

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cert-1", mockSvc.lastID)
	require.NotNil(t, mockSvc.lastApprove.PointsOverride)
	assert.Equal(t, 35, *mockSvc.lastApprove.PointsOverride)
}

func TestCertificateHandlerApproveEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &certificateServiceMock{certificate: &models.Certificate{ID: "cert-1"}}
	handler := NewCertificateHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/certificates/cert-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "cert-1"}}
	withClaims(c, &models.JWTClaims{UserID: "fac-1", Role: models.RoleFaculty, DepartmentID: "cse"})

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mockSvc.lastApprove.PointsOverride)
}

func TestCertificateHandlerApproveAlreadyProcessed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCertificateHandler(&certificateServiceMock{err: appErrors.ErrAlreadyProcessed})

	c, w := newGinContext(http.MethodPost, "/certificates/cert-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "cert-1"}}
	withClaims(c, &models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD, DepartmentID: "cse"})

	handler.Approve(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCertificateHandlerRejectInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCertificateHandler(&certificateServiceMock{})

	c, w := newGinContext(http.MethodPost, "/certificates/cert-1/reject", []byte(`{"reason":`))
	c.Params = gin.Params{{Key: "id", Value: "cert-1"}}
	withClaims(c, &models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD, DepartmentID: "cse"})

	handler.Reject(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCertificateHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &certificateServiceMock{}
	handler := NewCertificateHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/certificates/cert-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "cert-1"}}
	withClaims(c, studentClaims())

	handler.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cert-1", mockSvc.lastID)
}

func TestCertificateHandlerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCertificateHandler(&certificateServiceMock{})

	c, w := newGinContext(http.MethodGet, "/certificates/cert-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "cert-1"}}

	handler.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCertificateHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	mockSvc := &certificateServiceMock{
		certificate: &models.Certificate{ID: "cert-1", FilePath: "certificates/stu-1/cert-1.pdf", MimeType: "application/pdf", SizeBytes: 8},
		file:        file,
	}
	handler := NewCertificateHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/certificates/cert-1/download?token=abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "cert-1"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cert-1.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestCertificateHandlerDownloadRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCertificateHandler(&certificateServiceMock{})

	c, w := newGinContext(http.MethodGet, "/certificates/cert-1/download", nil)
	c.Params = gin.Params{{Key: "id", Value: "cert-1"}}

	handler.Download(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCertificateHandlerHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	certID := "cert-1"
	mockSvc := &certificateServiceMock{history: []models.AuditLog{
		{ID: "a1", Action: models.AuditActionCertificateSubmit, Resource: "certificate", ResourceID: &certID},
		{ID: "a2", Action: models.AuditActionCertificateReject, Resource: "certificate", ResourceID: &certID},
	}}
	handler := NewCertificateHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/certificates/cert-1/history", nil)
	c.Params = gin.Params{{Key: "id", Value: certID}}
	withClaims(c, studentClaims())

	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, certID, mockSvc.lastID)
	assert.Contains(t, w.Body.String(), models.AuditActionCertificateReject)
}
