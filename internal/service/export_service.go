package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/models"
	"github.com/noah-isme/activity-points-api/pkg/export"
	"github.com/noah-isme/activity-points-api/pkg/storage"
)

const reportPageSize = 500

type reportStudentSource interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// Renderer turns a dataset into the bytes of one file format.
type Renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig holds the public URL prefix and the result lifetime.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult describes a stored report and its signed download link.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders department reports and stores them for download.
type ExportService struct {
	students    reportStudentSource
	departments departmentReader
	ledger      *LedgerService
	storage     fileStorage
	renderers   map[models.ReportFormat]Renderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService wires the export service. Nil renderers fall back to the
// pkg/export CSV and PDF implementations.
func NewExportService(students reportStudentSource, departments departmentReader, ledgerSvc *LedgerService, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv, pdf Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		students:    students,
		departments: departments,
		ledger:      ledgerSvc,
		storage:     files,
		renderers: map[models.ReportFormat]Renderer{
			models.ReportFormatCSV: csv,
			models.ReportFormatPDF: pdf,
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
	}
}

// Generate renders job, stores the file and signs a download link for it.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, errors.New("export: nil report job")
	}
	renderer, ok := s.renderers[job.Params.Format]
	if !ok {
		return nil, fmt.Errorf("export: unsupported format %q", job.Params.Format)
	}
	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("export: build %s dataset: %w", job.Type, err)
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("export: render %s: %w", job.Params.Format, err)
	}
	relPath, err := s.storage.Save(reportFilename(job, time.Now().UTC()), payload)
	if err != nil {
		return nil, fmt.Errorf("export: store report: %w", err)
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, fmt.Errorf("export: sign report link: %w", err)
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          s.cfg.APIPrefix + "/export/" + token,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken verifies a report download token. allowExpired is used by
// cleanup, which still needs the path of an expired link.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open opens a stored report.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored report.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup sweeps report files older than ttl, or ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// reportFilename is <type>_<department>[_<year>]_<job>_<timestamp>.<format>.
func reportFilename(job *models.ReportJob, at time.Time) string {
	parts := []string{strings.ToLower(string(job.Type)), filenameSafe(job.Params.DepartmentID)}
	if job.Params.AcademicYear != "" {
		parts = append(parts, filenameSafe(job.Params.AcademicYear))
	}
	id := job.ID
	if len(id) > 8 {
		id = id[:8]
	}
	parts = append(parts, filenameSafe(id), at.Format("20060102T150405Z"))
	return strings.Join(parts, "_") + "." + string(job.Params.Format)
}

// filenameSafe keeps letters, digits and dashes and caps the result at 64 bytes.
func filenameSafe(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '/' || r == '.' || r == '_':
			return '-'
		}
		return -1
	}, raw)
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		return "na"
	}
	if len(cleaned) > 64 {
		cleaned = cleaned[:64]
	}
	return cleaned
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ReportTypePoints:
		return s.buildPointsDataset(ctx, job.Params)
	case models.ReportTypeClearance:
		return s.buildClearanceDataset(ctx, job.Params)
	default:
		return export.Dataset{}, fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildPointsDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	students, err := s.departmentStudents(ctx, params, "")
	if err != nil {
		return export.Dataset{}, err
	}
	table := s.ledger.Requirements()

	headers := []string{"Register No", "Name", "Status", "Current Year"}
	for o := ledger.First; o <= ledger.MaxOrdinal; o++ {
		headers = append(headers, o.String())
	}
	headers = append(headers, "Total", "Required", "Progress (%)")

	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		account := student.LedgerAccount()
		overall := ledger.OverallProgress(account, table)
		row := map[string]string{
			"Register No":  student.RegisterNo,
			"Name":         student.FullName,
			"Status":       string(student.Status),
			"Current Year": student.CurrentYear,
			"Total":        strconv.Itoa(overall.TotalPoints),
			"Required":     strconv.Itoa(overall.RequiredPoints),
			"Progress (%)": fmt.Sprintf("%.2f", overall.Percentage),
		}
		relevant := make(map[ledger.Bucket]bool)
		for _, field := range account.Relevant() {
			relevant[field.Bucket] = true
		}
		for o := ledger.First; o <= ledger.MaxOrdinal; o++ {
			if relevant[o.Bucket()] {
				row[o.String()] = strconv.Itoa(account.Points.Get(o.Bucket()))
			} else {
				row[o.String()] = "-"
			}
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title:   fmt.Sprintf("Activity Points Report %s", s.departmentLabel(ctx, params)),
		Headers: headers,
		Rows:    rows,
		Footer:  fmt.Sprintf("%d students", len(rows)),
	}, nil
}

func (s *ExportService) buildClearanceDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	students, err := s.departmentStudents(ctx, params, models.StudentStatusPendingClearance)
	if err != nil {
		return export.Dataset{}, err
	}
	headers := []string{"Register No", "Name", "Current Year", "Academic Year", "Points", "Required", "Shortfall"}
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		progress, ok := s.ledger.CurrentYearProgress(student)
		if !ok {
			s.logger.Warn("skipping student with unknown current year", zap.String("student_id", student.ID))
			continue
		}
		shortfall := progress.Required - progress.Points
		if shortfall < 0 {
			shortfall = 0
		}
		rows = append(rows, map[string]string{
			"Register No":   student.RegisterNo,
			"Name":          student.FullName,
			"Current Year":  student.CurrentYear,
			"Academic Year": student.CurrentAcademicYear,
			"Points":        strconv.Itoa(progress.Points),
			"Required":      strconv.Itoa(progress.Required),
			"Shortfall":     strconv.Itoa(shortfall),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Pending Clearance %s", s.departmentLabel(ctx, params)),
		Headers: headers,
		Rows:    rows,
		Footer:  fmt.Sprintf("%d students awaiting clearance", len(rows)),
	}, nil
}

// departmentStudents pages through every student of the report's department.
func (s *ExportService) departmentStudents(ctx context.Context, params models.ReportJobParams, status models.StudentStatus) ([]models.Student, error) {
	result := make([]models.Student, 0)
	for page := 1; ; page++ {
		batch, total, err := s.students.List(ctx, models.StudentFilter{
			DepartmentID: params.DepartmentID,
			Status:       status,
			Page:         page,
			PageSize:     reportPageSize,
		})
		if err != nil {
			return nil, err
		}
		for _, student := range batch {
			if params.AcademicYear != "" && student.CurrentAcademicYear != params.AcademicYear {
				continue
			}
			result = append(result, student)
		}
		if len(batch) < reportPageSize || page*reportPageSize >= total {
			break
		}
	}
	return result, nil
}

func (s *ExportService) departmentLabel(ctx context.Context, params models.ReportJobParams) string {
	label := params.DepartmentID
	if s.departments != nil {
		department, err := s.departments.FindByID(ctx, params.DepartmentID)
		switch {
		case err == nil:
			label = department.Name
		case !errors.Is(err, sql.ErrNoRows):
			s.logger.Warn("failed to load department for report title", zap.String("department_id", params.DepartmentID), zap.Error(err))
		}
	}
	if params.AcademicYear != "" {
		label += " " + params.AcademicYear
	}
	return label
}
