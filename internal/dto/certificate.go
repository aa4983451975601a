package dto

import (
	"io"
	"time"

	"github.com/noah-isme/activity-points-api/internal/models"
)

// SubmitCertificateRequest captures the multipart form fields of POST /certificates.
type SubmitCertificateRequest struct {
	CategoryID  string     `form:"categoryId" validate:"required"`
	Level       string     `form:"level" validate:"max=100"`
	Title       string     `form:"title" validate:"required,max=200"`
	Organizer   *string    `form:"organizer" validate:"omitempty,max=200"`
	EventDate   *time.Time `form:"eventDate" time_format:"2006-01-02"`
	Description *string    `form:"description" validate:"omitempty,max=2000"`
}

// CertificateUpload is the scan attached to a submission.
type CertificateUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ApproveCertificateRequest is the body of POST /certificates/:id/approve.
type ApproveCertificateRequest struct {
	PointsOverride *int `json:"pointsOverride,omitempty" validate:"omitempty,min=0,max=1000"`
}

// RejectCertificateRequest is the body of POST /certificates/:id/reject.
type RejectCertificateRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CertificateQuery filters GET /certificates.
type CertificateQuery struct {
	Status       models.CertificateStatus `form:"status"`
	DepartmentID string                   `form:"departmentId"`
	StudentID    string                   `form:"studentId"`
	AcademicYear string                   `form:"academicYear"`
	Page         int                      `form:"page"`
	PageSize     int                      `form:"pageSize"`
}

// CertificateDownloadResponse carries a signed download link.
type CertificateDownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
