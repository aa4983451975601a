package models

import "time"

// WindowState is the submission gate of a department.
type WindowState string

const (
	WindowOpen   WindowState = "OPEN"
	WindowClosed WindowState = "CLOSED"
)

// UploadWindow is the per-department submission gate. Deadline is an
// informational marker kept only while closed.
type UploadWindow struct {
	DepartmentID string      `db:"department_id" json:"departmentId"`
	State        WindowState `db:"state" json:"state"`
	DeadlineAt   *time.Time  `db:"deadline_at" json:"deadlineAt,omitempty"`
	UpdatedBy    *string     `db:"updated_by" json:"updatedBy,omitempty"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// OpenWindow builds an open gate. Opening always clears the deadline.
func OpenWindow(departmentID string) UploadWindow {
	return UploadWindow{DepartmentID: departmentID, State: WindowOpen}
}

// ClosedWindow builds a closed gate with an optional deadline marker.
func ClosedWindow(departmentID string, deadline *time.Time) UploadWindow {
	return UploadWindow{DepartmentID: departmentID, State: WindowClosed, DeadlineAt: deadline}
}

// IsOpen reports the gate state. The deadline is never consulted.
func (w UploadWindow) IsOpen() bool {
	return w.State == WindowOpen
}

// UploadWindowStatus is the wire shape of the gate.
type UploadWindowStatus struct {
	DepartmentID string     `json:"departmentId"`
	IsActive     bool       `json:"isActive"`
	DeadlineAt   *time.Time `json:"deadlineAt"`
	Stored       bool       `json:"stored"`
}
