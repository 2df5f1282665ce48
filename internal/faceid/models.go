// Package faceid turns an image into at most one face descriptor.
//
// The heavy lifting (detection, landmark prediction, embedding) is done by
// three model collaborators bundled in a Bundle. The Pipeline owns the
// orchestration: which regions are considered, how chips are aligned and
// which chip gets embedded.
package faceid

import (
	"context"
	"errors"
	"image"

	"github.com/kozaktomas/fras/internal/database"
)

var (
	// ErrUndecodable is returned when image bytes cannot be decoded
	ErrUndecodable = errors.New("undecodable image")
	// ErrDimension is returned when the embedder produces a descriptor of the wrong length
	ErrDimension = errors.New("unexpected descriptor dimension")
	// ErrAlignment is returned when a face chip cannot be aligned from landmarks
	ErrAlignment = errors.New("face chip alignment failed")
)

// Region is a detected face bounding box
type Region struct {
	Box   image.Rectangle
	Score float64
}

// Point is a landmark position in image coordinates
type Point struct {
	X, Y float64
}

// Shape is the set of landmarks predicted for one region
type Shape struct {
	Points []Point
}

// Detector finds face regions in an image
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Region, error)
}

// LandmarkPredictor locates facial landmarks inside a region
type LandmarkPredictor interface {
	Predict(ctx context.Context, img image.Image, region Region) (Shape, error)
}

// Embedder computes a descriptor from an aligned face chip
type Embedder interface {
	Embed(ctx context.Context, chip image.Image) (database.Descriptor, error)
}

// Bundle holds the three model collaborators. It is built once at startup and
// shared read-only between goroutines.
type Bundle struct {
	Detector  Detector
	Predictor LandmarkPredictor
	Embedder  Embedder
}

// NewBundle wires all three collaborators to a single model server client.
func NewBundle(c *ModelClient) Bundle {
	return Bundle{Detector: c, Predictor: c, Embedder: c}
}

func (b Bundle) validate() error {
	if b.Detector == nil || b.Predictor == nil || b.Embedder == nil {
		return errors.New("model bundle is incomplete")
	}
	return nil
}
