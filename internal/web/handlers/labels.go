package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/facematch"
)

// LabelsHandler lists the enrolled names.
type LabelsHandler struct {
	lister database.LabelLister
	logger *slog.Logger
}

// NewLabelsHandler creates a new labels handler.
func NewLabelsHandler(lister database.LabelLister, logger *slog.Logger) *LabelsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelsHandler{lister: lister, logger: logger}
}

// LabelsResponse lists names with their descriptor counts.
type LabelsResponse struct {
	Labels []database.LabelCount `json:"labels"`
	Total  int                   `json:"total"`
}

// List returns every enrolled name, alphabetically.
func (h *LabelsHandler) List(w http.ResponseWriter, r *http.Request) {
	labels, err := h.lister.Labels(r.Context())
	if err != nil {
		h.logger.Error("failed to list labels", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list labels")
		return
	}
	if labels == nil {
		labels = []database.LabelCount{}
	}
	facematch.SortLabels(labels)

	total := 0
	for _, l := range labels {
		total += l.Count
	}
	respondJSON(w, http.StatusOK, LabelsResponse{Labels: labels, Total: total})
}
