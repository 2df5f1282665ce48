package facematch

import (
	"fmt"
	"math"

	"github.com/kozaktomas/fras/internal/database"
)

// Euclidean returns the L2 distance between two descriptors.
func Euclidean(a, b database.Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: query has %d components, candidate has %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Match scans candidates in order and returns the label of the first one whose
// distance to query is strictly below threshold.
func Match(query database.Descriptor, candidates []database.Record, threshold float64) (Result, error) {
	for _, c := range candidates {
		dist, err := Euclidean(query, c.Descriptor)
		if err != nil {
			return Result{}, fmt.Errorf("record %d: %w", c.ID, err)
		}
		if dist < threshold {
			return Result{Matched: true, Label: c.Label, RecordID: c.ID, Distance: dist}, nil
		}
	}
	return Result{}, nil
}

// Nearest returns the candidate with the smallest distance strictly below threshold.
// Every candidate is checked, so a dimension mismatch anywhere is reported.
func Nearest(query database.Descriptor, candidates []database.Record, threshold float64) (Result, error) {
	best := Result{Distance: math.Inf(1)}
	for _, c := range candidates {
		dist, err := Euclidean(query, c.Descriptor)
		if err != nil {
			return Result{}, fmt.Errorf("record %d: %w", c.ID, err)
		}
		if dist < threshold && dist < best.Distance {
			best = Result{Matched: true, Label: c.Label, RecordID: c.ID, Distance: dist}
		}
	}
	if !best.Matched {
		return Result{}, nil
	}
	return best, nil
}

// Matcher holds the configured threshold and policy
type Matcher struct {
	Threshold float64
	Policy    Policy
}

// NewMatcher creates a matcher. An unknown policy falls back to PolicyFirst.
func NewMatcher(threshold float64, policy string) Matcher {
	p := Policy(policy)
	if p != PolicyNearest {
		p = PolicyFirst
	}
	return Matcher{Threshold: threshold, Policy: p}
}

// Match applies the configured policy
func (m Matcher) Match(query database.Descriptor, candidates []database.Record) (Result, error) {
	if m.Policy == PolicyNearest {
		return Nearest(query, candidates, m.Threshold)
	}
	return Match(query, candidates, m.Threshold)
}
