package ledger

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoBucket is returned when an academic year cannot be mapped to a bucket
// of the student's tenure.
var ErrNoBucket = errors.New("academic year does not map to a point bucket")

// BucketPoints holds the six per-year accumulators, indexed by ordinal-1.
type BucketPoints [MaxOrdinal]int

// Get returns the points stored in b, or 0 for unknown buckets.
func (p BucketPoints) Get(b Bucket) int {
	o, ok := OrdinalOf(b)
	if !ok {
		return 0
	}
	return p[o-1]
}

// Account is the ledger view of one student.
type Account struct {
	JoinYear            string
	JoinAcademicYear    string
	CurrentYear         string
	CurrentAcademicYear string
	Points              BucketPoints
}

// Relevant returns the buckets of the account's tenure.
func (a Account) Relevant() []YearField {
	return RelevantYearFields(a.JoinYear, a.JoinAcademicYear, a.CurrentYear, a.CurrentAcademicYear)
}

// RequirementTable is the canonical required points per ordinal year.
type RequirementTable [MaxOrdinal]int

// Required returns the requirement for o, or 0 for invalid ordinals.
func (t RequirementTable) Required(o YearOrdinal) int {
	if !o.Valid() {
		return 0
	}
	return t[o-1]
}

// Progress reports how far a bucket is toward its requirement.
type Progress struct {
	Bucket      Bucket  `json:"bucket"`
	DisplayName string  `json:"displayName"`
	Order       int     `json:"order"`
	Points      int     `json:"points"`
	Required    int     `json:"required"`
	Percentage  float64 `json:"percentage"`
}

// Met reports whether the requirement is satisfied.
func (p Progress) Met() bool {
	return p.Points >= p.Required
}

// Overall aggregates progress across every relevant bucket.
type Overall struct {
	TotalPoints    int     `json:"totalPoints"`
	RequiredPoints int     `json:"requiredPoints"`
	Percentage     float64 `json:"percentage"`
}

// TotalPoints sums the buckets of the account's tenure.
func TotalPoints(a Account) int {
	total := 0
	for _, field := range a.Relevant() {
		total += a.Points.Get(field.Bucket)
	}
	return total
}

// YearProgress evaluates a single bucket against the requirement table.
func YearProgress(a Account, b Bucket, table RequirementTable) Progress {
	o, _ := OrdinalOf(b)
	points := a.Points.Get(b)
	required := table.Required(o)
	return Progress{
		Bucket:      b,
		DisplayName: o.DisplayName(),
		Order:       int(o),
		Points:      points,
		Required:    required,
		Percentage:  percentage(points, required),
	}
}

// YearsProgress evaluates every relevant bucket in ascending order.
func YearsProgress(a Account, table RequirementTable) []Progress {
	fields := a.Relevant()
	result := make([]Progress, 0, len(fields))
	for _, field := range fields {
		result = append(result, YearProgress(a, field.Bucket, table))
	}
	return result
}

// OverallProgress sums points and requirements across relevant buckets.
func OverallProgress(a Account, table RequirementTable) Overall {
	overall := Overall{}
	for _, field := range a.Relevant() {
		o, _ := OrdinalOf(field.Bucket)
		overall.TotalPoints += a.Points.Get(field.Bucket)
		overall.RequiredPoints += table.Required(o)
	}
	overall.Percentage = percentage(overall.TotalPoints, overall.RequiredPoints)
	return overall
}

// CreditBucket picks the bucket an approval made in academicYear is credited
// to. The result always lies between the join and current ordinals: years
// before the join year have no bucket, and certificates from academic years
// after the student's current ordinal (a held back student) are credited to
// the current year's bucket.
func CreditBucket(a Account, academicYear string) (Bucket, error) {
	bucket, ok := ResolveYearField(a.JoinYear, a.JoinAcademicYear, academicYear)
	if !ok {
		return "", fmt.Errorf("%w: %q for join %s %s", ErrNoBucket, academicYear, a.JoinYear, a.JoinAcademicYear)
	}
	target, _ := OrdinalOf(bucket)
	join, _ := ParseYearOrdinal(a.JoinYear)
	if target < join {
		return "", fmt.Errorf("%w: %q precedes join %s %s", ErrNoBucket, academicYear, a.JoinYear, a.JoinAcademicYear)
	}
	current, ok := ParseYearOrdinal(a.CurrentYear)
	if !ok {
		return "", fmt.Errorf("%w: unknown current year %q", ErrNoBucket, a.CurrentYear)
	}
	if target > current {
		return current.Bucket(), nil
	}
	return bucket, nil
}

// CheckTotal verifies a cached total against the derived one.
func CheckTotal(a Account, cached int) error {
	if derived := TotalPoints(a); derived != cached {
		return fmt.Errorf("cached total %d differs from bucket sum %d", cached, derived)
	}
	return nil
}

func percentage(points, required int) float64 {
	if required <= 0 {
		return 100
	}
	pct := float64(points) * 100 / float64(required)
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*100) / 100
}
