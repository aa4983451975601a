package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// AcademicYear is an institution-wide calendar label such as "2024-25".
type AcademicYear struct {
	Start int
}

// ParseAcademicYear strictly validates a "YYYY-YY" label whose suffix is the
// year following Start.
func ParseAcademicYear(label string) (AcademicYear, error) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return AcademicYear{}, fmt.Errorf("academic year %q must look like YYYY-YY", label)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return AcademicYear{}, fmt.Errorf("academic year %q has a non-numeric start", label)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return AcademicYear{}, fmt.Errorf("academic year %q has a non-numeric end", label)
	}
	if end != (start+1)%100 {
		return AcademicYear{}, fmt.Errorf("academic year %q must span consecutive years", label)
	}
	return AcademicYear{Start: start}, nil
}

// String renders the canonical "YYYY-YY" label.
func (a AcademicYear) String() string {
	return fmt.Sprintf("%04d-%02d", a.Start, (a.Start+1)%100)
}

// Next returns the following academic year.
func (a AcademicYear) Next() AcademicYear {
	return AcademicYear{Start: a.Start + 1}
}

// Previous returns the preceding academic year.
func (a AcademicYear) Previous() AcademicYear {
	return AcademicYear{Start: a.Start - 1}
}

// Before reports whether a starts earlier than other.
func (a AcademicYear) Before(other AcademicYear) bool {
	return a.Start < other.Start
}

// startYear leniently extracts the start year from a "YYYY-YY" label: exactly
// two hyphen separated numeric halves are required.
func startYear(label string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) != 2 {
		return 0, false
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return 0, false
	}
	return start, true
}
