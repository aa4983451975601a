package ledger

// YearField describes one bucket relevant to a student's tenure.
type YearField struct {
	Bucket      Bucket `json:"bucket"`
	DisplayName string `json:"displayName"`
	Order       int    `json:"order"`
}

// ResolveYearField maps a join year and the academic year of interest to the
// bucket that academic year belongs to. It returns false for malformed labels,
// unknown ordinals and orders outside First..Sixth.
func ResolveYearField(joinYear, joinAcademicYear, currentAcademicYear string) (Bucket, bool) {
	joinOrdinal, ok := ParseYearOrdinal(joinYear)
	if !ok {
		return "", false
	}
	joinStart, ok := startYear(joinAcademicYear)
	if !ok {
		return "", false
	}
	currentStart, ok := startYear(currentAcademicYear)
	if !ok {
		return "", false
	}
	order := joinOrdinal + YearOrdinal(currentStart-joinStart)
	if !order.Valid() {
		return "", false
	}
	return order.Bucket(), true
}

// RelevantYearFields lists every bucket from the join ordinal to the current
// ordinal inclusive, ascending. Ordinals come straight from the names, not
// from academic year arithmetic; the labels only need to be well formed.
func RelevantYearFields(joinYear, joinAcademicYear, currentYear, currentAcademicYear string) []YearField {
	joinOrdinal, ok := ParseYearOrdinal(joinYear)
	if !ok {
		return []YearField{}
	}
	currentOrdinal, ok := ParseYearOrdinal(currentYear)
	if !ok {
		return []YearField{}
	}
	if _, ok := startYear(joinAcademicYear); !ok {
		return []YearField{}
	}
	if _, ok := startYear(currentAcademicYear); !ok {
		return []YearField{}
	}
	if currentOrdinal < joinOrdinal {
		return []YearField{}
	}
	fields := make([]YearField, 0, int(currentOrdinal-joinOrdinal)+1)
	for o := joinOrdinal; o <= currentOrdinal; o++ {
		fields = append(fields, YearField{
			Bucket:      o.Bucket(),
			DisplayName: o.DisplayName(),
			Order:       int(o),
		})
	}
	return fields
}
