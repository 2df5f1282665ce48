// Package recognize runs the capture, extract, match and signal cycle.
package recognize

import (
	"time"

	"github.com/google/uuid"
)

// State is the outcome of one recognition iteration
type State int

const (
	// StateNoFaceOrError covers "no face in the frame" and every per-iteration failure
	StateNoFaceOrError State = iota
	// StateMatched means a stored descriptor was within the threshold
	StateMatched
	// StateNotMatched means a face was found but nobody matched
	StateNotMatched
)

func (s State) String() string {
	switch s {
	case StateMatched:
		return "MATCHED"
	case StateNotMatched:
		return "NOT_MATCHED"
	default:
		return "NO_FACE_OR_ERROR"
	}
}

// MarshalText renders the state name in JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is emitted exactly once per iteration
type Result struct {
	ID       uuid.UUID
	State    State
	Label    string  // set for StateMatched
	Distance float64 // set for StateMatched
	Err      error   // set when the iteration failed
	At       time.Time
}
