package dto

import "time"

// ToggleUploadWindowRequest is the body of POST /upload-lock/toggle. Without
// IsActive the current state is flipped.
type ToggleUploadWindowRequest struct {
	DepartmentID string     `json:"departmentId"`
	IsActive     *bool      `json:"isActive,omitempty"`
	DeadlineAt   *time.Time `json:"deadlineAt,omitempty"`
}
