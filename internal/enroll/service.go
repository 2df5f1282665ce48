// Package enroll adds labeled face descriptors to the store and removes them.
package enroll

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/facematch"
)

var (
	// ErrNoFace is returned when the image holds no usable face. Nothing is written.
	ErrNoFace = errors.New("no face detected in the image")
	// ErrInvalidInput is returned for an empty label or an empty image source
	ErrInvalidInput = errors.New("invalid input")
)

// Extractor produces at most one descriptor per image
type Extractor interface {
	Extract(ctx context.Context, img image.Image) ([]database.Descriptor, error)
}

// Outcome describes a successful enrollment
type Outcome struct {
	RecordID int64
	Label    string
}

// Service runs enrollment and removal against a store
type Service struct {
	store     database.Store
	extractor Extractor
	logger    *slog.Logger
}

// NewService creates an enrollment service
func NewService(store database.Store, extractor Extractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, extractor: extractor, logger: logger}
}

// Enroll extracts a descriptor from src and stores it under label exactly as
// given. Exactly one record is written on success; none on any error.
func (s *Service) Enroll(ctx context.Context, label string, src ImageSource) (Outcome, error) {
	if err := facematch.ValidateLabel(label); err != nil {
		return Outcome{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if src.empty() {
		return Outcome{}, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}

	img, err := src.decode()
	if err != nil {
		return Outcome{}, fmt.Errorf("load image: %w", err)
	}

	descriptors, err := s.extractor.Extract(ctx, img)
	if err != nil {
		return Outcome{}, fmt.Errorf("extract features: %w", err)
	}
	if len(descriptors) == 0 {
		s.logger.Info("no face detected", "name", label, "source", src.String())
		return Outcome{}, ErrNoFace
	}

	id, err := s.store.Append(ctx, label, descriptors[0])
	if err != nil {
		return Outcome{}, fmt.Errorf("save features: %w", err)
	}

	s.logger.Info("features saved", "name", label, "id", id, "source", src.String())
	return Outcome{RecordID: id, Label: label}, nil
}

// Remove deletes every record stored under label and returns how many were
// removed. Removing an unknown label succeeds with zero.
func (s *Service) Remove(ctx context.Context, label string) (int64, error) {
	if err := facematch.ValidateLabel(label); err != nil {
		return 0, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	n, err := s.store.DeleteByLabel(ctx, label)
	if err != nil {
		return 0, fmt.Errorf("delete features: %w", err)
	}

	s.logger.Info("features deleted", "name", label, "removed", n)
	return n, nil
}
