package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/kozaktomas/fras/internal/constants"
	"github.com/kozaktomas/fras/internal/enroll"
)

// Enroller is the part of the enrollment service used by the handlers.
type Enroller interface {
	Enroll(ctx context.Context, label string, src enroll.ImageSource) (enroll.Outcome, error)
	Remove(ctx context.Context, label string) (int64, error)
}

// FacesHandler handles enrollment and removal endpoints.
type FacesHandler struct {
	enroller Enroller
	logger   *slog.Logger
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(enroller Enroller, logger *slog.Logger) *FacesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FacesHandler{enroller: enroller, logger: logger}
}

const (
	msgMissingFields = "Missing 'image' or 'name' field in the request."
	msgNoFace        = "No faces detected in the image."
	msgSaved         = "Features saved successfully."
	msgDeleted       = "Features deleted successfully."
)

// EnrollResponse is returned by both enrollment endpoints.
type EnrollResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
}

// RemoveResponse is returned by the remove endpoint.
type RemoveResponse struct {
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}

type addAPIRequest struct {
	ImagePath string `json:"image_path"`
	Name      string `json:"name"`
}

type removeRequest struct {
	Name string `json:"name"`
}

// readImagePart returns the "image" part either as an uploaded file or as a plain form value.
func readImagePart(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return []byte(r.FormValue("image")), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Add enrolls an uploaded image (multipart fields "image" and "name").
func (h *FacesHandler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxMemoryUpload); err != nil {
		respondError(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	// Parts larger than MaxMemoryUpload were spilled to temporary files.
	defer r.MultipartForm.RemoveAll()

	name := r.FormValue("name")
	data, err := readImagePart(r)
	if err != nil {
		h.logger.Error("failed to read uploaded image", "error", err)
		respondError(w, http.StatusInternalServerError, "Error processing image.")
		return
	}
	if len(data) == 0 || name == "" {
		respondError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	h.enroll(w, r, name, enroll.FromBytes(data))
}

// AddAPI enrolls an image already present on the server's filesystem.
func (h *FacesHandler) AddAPI(w http.ResponseWriter, r *http.Request) {
	var req addAPIRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, constants.MaxJSONBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.ImagePath == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "Missing 'image_path' or 'name' field in the request.")
		return
	}

	h.enroll(w, r, req.Name, enroll.FromPath(req.ImagePath))
}

func (h *FacesHandler) enroll(w http.ResponseWriter, r *http.Request, name string, src enroll.ImageSource) {
	out, err := h.enroller.Enroll(r.Context(), name, src)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, EnrollResponse{Message: msgSaved, ID: out.RecordID, Name: out.Label})
	case errors.Is(err, enroll.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, enroll.ErrNoFace):
		respondError(w, http.StatusBadRequest, msgNoFace)
	default:
		h.logger.Error("enrollment failed", "name", sanitizeForLog(name), "error", err)
		respondError(w, http.StatusInternalServerError, "Error processing image.")
	}
}

// Remove deletes every descriptor stored under a name.
func (h *FacesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, constants.MaxJSONBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	removed, err := h.enroller.Remove(r.Context(), req.Name)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, RemoveResponse{Message: msgDeleted, Removed: removed})
	case errors.Is(err, enroll.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "Missing 'name' field in the request.")
	default:
		h.logger.Error("remove failed", "name", sanitizeForLog(req.Name), "error", err)
		respondError(w, http.StatusInternalServerError, "Error deleting features.")
	}
}
