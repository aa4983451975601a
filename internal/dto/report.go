package dto

import "github.com/noah-isme/activity-points-api/internal/models"

// ReportRequest captures POST /reports/points payload.
type ReportRequest struct {
	DepartmentID string              `json:"departmentId"`
	AcademicYear string              `json:"academicYear,omitempty"`
	Format       models.ReportFormat `json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
