package models

import (
	"time"

	"github.com/noah-isme/activity-points-api/internal/ledger"
)

// StudentStatus captures where a student is in the progression lifecycle.
type StudentStatus string

const (
	StudentStatusActive           StudentStatus = "ACTIVE"
	StudentStatusPendingClearance StudentStatus = "PENDING_CLEARANCE"
	StudentStatusAlumni           StudentStatus = "ALUMNI"
)

// Student represents an enrolled learner and their points ledger.
type Student struct {
	ID                  string        `db:"id" json:"id"`
	UserID              string        `db:"user_id" json:"userId"`
	DepartmentID        string        `db:"department_id" json:"departmentId"`
	RegisterNo          string        `db:"register_no" json:"registerNo"`
	FullName            string        `db:"full_name" json:"fullName"`
	JoinYear            string        `db:"join_year" json:"joinYear"`
	JoinAcademicYear    string        `db:"join_academic_year" json:"joinAcademicYear"`
	CurrentYear         string        `db:"current_year" json:"currentYear"`
	CurrentAcademicYear string        `db:"current_academic_year" json:"currentAcademicYear"`
	Status              StudentStatus `db:"status" json:"status"`
	Year1Points         int           `db:"year1_points" json:"year1Points"`
	Year2Points         int           `db:"year2_points" json:"year2Points"`
	Year3Points         int           `db:"year3_points" json:"year3Points"`
	Year4Points         int           `db:"year4_points" json:"year4Points"`
	Year5Points         int           `db:"year5_points" json:"year5Points"`
	Year6Points         int           `db:"year6_points" json:"year6Points"`
	TotalPoints         int           `db:"total_points" json:"totalPoints"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
}

// BucketPoints returns the per-year accumulators in ordinal order.
func (s Student) BucketPoints() ledger.BucketPoints {
	return ledger.BucketPoints{s.Year1Points, s.Year2Points, s.Year3Points, s.Year4Points, s.Year5Points, s.Year6Points}
}

// LedgerAccount projects the student onto the ledger view.
func (s Student) LedgerAccount() ledger.Account {
	return ledger.Account{
		JoinYear:            s.JoinYear,
		JoinAcademicYear:    s.JoinAcademicYear,
		CurrentYear:         s.CurrentYear,
		CurrentAcademicYear: s.CurrentAcademicYear,
		Points:              s.BucketPoints(),
	}
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	DepartmentID string
	Status       StudentStatus
	Search       string
	Page         int
	PageSize     int
}

// StudentTransitionCounts tallies the students a year-end pass started from:
// everyone still ACTIVE plus those it held back or graduated out of the
// previous academic year.
type StudentTransitionCounts struct {
	Active           int `db:"active"`
	Graduated        int `db:"graduated"`
	PendingClearance int `db:"pending_clearance"`
}

// Total is the number of students the pass covered.
func (c StudentTransitionCounts) Total() int {
	return c.Active + c.Graduated + c.PendingClearance
}

// StudentTransition is a single conditional write applied by the year scheduler.
type StudentTransition struct {
	StudentID                   string
	ExpectedCurrentAcademicYear string
	Status                      StudentStatus
	CurrentYear                 string
	CurrentAcademicYear         string
}
