package handlers

import (
	"net/http"
	"time"

	"github.com/kozaktomas/fras/internal/recognize"
)

const msgRunning = "Continuous recognition is running."

// StatusHandler reports the state of the recognition loop.
type StatusHandler struct {
	board *recognize.Board // nil when no loop runs in this process
}

// NewStatusHandler creates a status handler. board may be nil.
func NewStatusHandler(board *recognize.Board) *StatusHandler {
	return &StatusHandler{board: board}
}

// StatusResponse describes the latest recognition result.
type StatusResponse struct {
	Status     string     `json:"status"`
	State      string     `json:"state,omitempty"`
	Name       string     `json:"name,omitempty"`
	Distance   float64    `json:"distance,omitempty"`
	Error      string     `json:"error,omitempty"`
	ID         string     `json:"id,omitempty"`
	At         *time.Time `json:"at,omitempty"`
	Iterations int64      `json:"iterations"`
}

// Run returns the latest recognition result, or the bare running message
// when no loop is attached or nothing has been recognized yet.
func (h *StatusHandler) Run(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Status: msgRunning}
	if h.board == nil {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	resp.Iterations = h.board.Iterations()
	if last, ok := h.board.Latest(); ok {
		resp.State = last.State.String()
		resp.Name = last.Label
		resp.Distance = last.Distance
		resp.ID = last.ID.String()
		at := last.At
		resp.At = &at
		if last.Err != nil {
			resp.Error = last.Err.Error()
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
