package models

import "time"

// AcademicYear is an append-only record of a started academic year.
type AcademicYear struct {
	ID                       string     `db:"id" json:"id"`
	Label                    string     `db:"label" json:"label"`
	StartedAt                time.Time  `db:"started_at" json:"startedAt"`
	EndedAt                  *time.Time `db:"ended_at" json:"endedAt,omitempty"`
	IsActive                 bool       `db:"is_active" json:"isActive"`
	TotalStudents            int        `db:"total_students" json:"totalStudents"`
	GraduatedStudents        int        `db:"graduated_students" json:"graduatedStudents"`
	PendingClearanceStudents int        `db:"pending_clearance_students" json:"pendingClearanceStudents"`
	StartedBy                *string    `db:"started_by" json:"startedBy,omitempty"`
}

// TransitionError records a student the year transition could not move.
type TransitionError struct {
	StudentID string `json:"studentId"`
	Message   string `json:"message"`
}

// TransitionSummary is returned by the year transition.
type TransitionSummary struct {
	AcademicYear string            `json:"academicYear"`
	Promoted     int               `json:"promoted"`
	Graduated    int               `json:"graduated"`
	HeldBack     int               `json:"heldBack"`
	Skipped      int               `json:"skipped"`
	Errors       []TransitionError `json:"errors"`
}
