// Package facematch decides whether a query descriptor belongs to an enrolled label.
package facematch

import "errors"

// ErrDimensionMismatch is returned when a query and a stored descriptor differ in length.
// It is never converted into a distance.
var ErrDimensionMismatch = errors.New("descriptor dimension mismatch")

// Policy selects which qualifying candidate wins
type Policy string

const (
	// PolicyFirst returns the first candidate in scan order within the threshold
	PolicyFirst Policy = "first"
	// PolicyNearest returns the closest candidate within the threshold; ties go to scan order
	PolicyNearest Policy = "nearest"
)

// Result is the outcome of a match attempt
type Result struct {
	Matched  bool
	Label    string
	RecordID int64
	Distance float64
}
