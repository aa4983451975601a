// Package ledger holds the pure points accounting rules: the ordinal year
// enumeration, the academic year arithmetic that maps a certificate to a
// per-year bucket, and the progress views derived from a student's buckets.
package ledger

import "strings"

// YearOrdinal is a student's year of study (First..Sixth).
type YearOrdinal int

const (
	First YearOrdinal = iota + 1
	Second
	Third
	Fourth
	Fifth
	Sixth
)

// MaxOrdinal is the last ordinal a student record can hold points for.
const MaxOrdinal = Sixth

// Bucket is the per-ordinal point accumulator name, e.g. "year3Points".
type Bucket string

// Both tables are sized by MaxOrdinal; a key past Sixth does not compile.
var ordinalNames = [MaxOrdinal + 1]string{
	First:  "First",
	Second: "Second",
	Third:  "Third",
	Fourth: "Fourth",
	Fifth:  "Fifth",
	Sixth:  "Sixth",
}

var ordinalBuckets = [MaxOrdinal + 1]Bucket{
	First:  "year1Points",
	Second: "year2Points",
	Third:  "year3Points",
	Fourth: "year4Points",
	Fifth:  "year5Points",
	Sixth:  "year6Points",
}

// ParseYearOrdinal maps an ordinal name ("Third", "third ") to its YearOrdinal.
func ParseYearOrdinal(name string) (YearOrdinal, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}
	for o := First; o <= MaxOrdinal; o++ {
		if strings.EqualFold(ordinalNames[o], name) {
			return o, true
		}
	}
	return 0, false
}

// Valid reports whether o is within First..Sixth.
func (o YearOrdinal) Valid() bool {
	return o >= First && o <= MaxOrdinal
}

// String returns the ordinal name, or "" for invalid ordinals.
func (o YearOrdinal) String() string {
	if !o.Valid() {
		return ""
	}
	return ordinalNames[o]
}

// DisplayName is the human label used in progress views.
func (o YearOrdinal) DisplayName() string {
	if !o.Valid() {
		return ""
	}
	return ordinalNames[o] + " Year"
}

// Bucket returns the point bucket for o, or "" for invalid ordinals.
func (o YearOrdinal) Bucket() Bucket {
	if !o.Valid() {
		return ""
	}
	return ordinalBuckets[o]
}

// Next returns the following ordinal. The result may be invalid past Sixth.
func (o YearOrdinal) Next() YearOrdinal {
	return o + 1
}

// OrdinalOf reverses Bucket.
func OrdinalOf(b Bucket) (YearOrdinal, bool) {
	for o := First; o <= MaxOrdinal; o++ {
		if ordinalBuckets[o] == b {
			return o, true
		}
	}
	return 0, false
}

// Buckets lists every bucket in ordinal order.
func Buckets() []Bucket {
	result := make([]Bucket, 0, int(MaxOrdinal))
	for o := First; o <= MaxOrdinal; o++ {
		result = append(result, ordinalBuckets[o])
	}
	return result
}
