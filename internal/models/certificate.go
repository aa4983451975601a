package models

import "time"

// CertificateStatus enumerates review states.
type CertificateStatus string

const (
	CertificateStatusPending  CertificateStatus = "PENDING"
	CertificateStatusApproved CertificateStatus = "APPROVED"
	CertificateStatusRejected CertificateStatus = "REJECTED"
)

// Certificate is a student's proof of activity awaiting or past review.
type Certificate struct {
	ID              string            `db:"id" json:"id"`
	StudentID       string            `db:"student_id" json:"studentId"`
	DepartmentID    string            `db:"department_id" json:"departmentId"`
	CategoryID      string            `db:"category_id" json:"categoryId"`
	Level           string            `db:"level" json:"level"`
	Title           string            `db:"title" json:"title"`
	Organizer       *string           `db:"organizer" json:"organizer,omitempty"`
	EventDate       *time.Time        `db:"event_date" json:"eventDate,omitempty"`
	Description     *string           `db:"description" json:"description,omitempty"`
	FilePath        string            `db:"file_path" json:"-"`
	MimeType        string            `db:"mime_type" json:"mimeType"`
	SizeBytes       int64             `db:"size_bytes" json:"sizeBytes"`
	Status          CertificateStatus `db:"status" json:"status"`
	PointsAllocated *int              `db:"points_allocated" json:"pointsAllocated,omitempty"`
	Bucket          *string           `db:"bucket" json:"bucket,omitempty"`
	AcademicYear    string            `db:"academic_year" json:"academicYear"`
	RejectionReason *string           `db:"rejection_reason" json:"rejectionReason,omitempty"`
	ReviewedBy      *string           `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewerRole    *UserRole         `db:"reviewer_role" json:"reviewerRole,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
	ReviewedAt      *time.Time        `db:"reviewed_at" json:"reviewedAt,omitempty"`
}

// Deletable reports whether the owner may still withdraw the certificate.
func (c Certificate) Deletable() bool {
	return c.Status == CertificateStatusPending || c.Status == CertificateStatusRejected
}

// CertificateFilter scopes certificate listings.
type CertificateFilter struct {
	StudentID    string
	DepartmentID string
	Status       CertificateStatus
	AcademicYear string
	Page         int
	PageSize     int
}

// CertificateDecision is the outcome persisted by a reviewer.
type CertificateDecision struct {
	CertificateID   string
	Status          CertificateStatus
	Points          int
	Bucket          string
	RejectionReason *string
	ReviewedBy      string
	ReviewerRole    UserRole
	ReviewedAt      time.Time
}
