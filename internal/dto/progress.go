package dto

import (
	"time"

	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/models"
)

// StudentSummary is the student part of a progress view.
type StudentSummary struct {
	ID                  string               `json:"id"`
	FullName            string               `json:"fullName"`
	RegisterNo          string               `json:"registerNo"`
	DepartmentID        string               `json:"departmentId"`
	JoinYear            string               `json:"joinYear"`
	JoinAcademicYear    string               `json:"joinAcademicYear"`
	CurrentYear         string               `json:"currentYear"`
	CurrentAcademicYear string               `json:"currentAcademicYear"`
	Status              models.StudentStatus `json:"status"`
}

// StudentProgress is returned by the progress endpoints.
type StudentProgress struct {
	Student     StudentSummary    `json:"student"`
	Overall     ledger.Overall    `json:"overall"`
	Years       []ledger.Progress `json:"years"`
	Current     *ledger.Progress  `json:"current,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// NewStudentSummary projects a student row.
func NewStudentSummary(s models.Student) StudentSummary {
	return StudentSummary{
		ID:                  s.ID,
		FullName:            s.FullName,
		RegisterNo:          s.RegisterNo,
		DepartmentID:        s.DepartmentID,
		JoinYear:            s.JoinYear,
		JoinAcademicYear:    s.JoinAcademicYear,
		CurrentYear:         s.CurrentYear,
		CurrentAcademicYear: s.CurrentAcademicYear,
		Status:              s.Status,
	}
}

// StudentQuery filters GET /students.
type StudentQuery struct {
	DepartmentID string               `form:"departmentId"`
	Status       models.StudentStatus `form:"status"`
	Search       string               `form:"search"`
	Page         int                  `form:"page"`
	PageSize     int                  `form:"pageSize"`
}
