// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Model constants. These are fixed by the face recognition model and must
// match the model server the pipeline talks to.
const (
	// DescriptorDim is the length of a face descriptor (ResNet metric network output)
	DescriptorDim = 128

	// ChipSize is the side length in pixels of an aligned face chip
	ChipSize = 150

	// ChipPadding is the margin added around the landmark template when aligning a chip
	ChipPadding = 0.25
)

// Landmark model sizes accepted by the pipeline
const (
	// LandmarksSmall is the point count of the 5-point shape predictor
	LandmarksSmall = 5

	// LandmarksLarge is the point count of the 68-point shape predictor
	LandmarksLarge = 68
)

// Recognition loop constants
const (
	// DefaultRecognizeInterval is the minimum delay between two recognition iterations
	DefaultRecognizeInterval = 500 * time.Millisecond

	// DefaultCaptureTimeout bounds a single frame capture
	DefaultCaptureTimeout = 10 * time.Second
)

// Storage constants
const (
	// DefaultStoreDir is the store directory relative to the user's home
	DefaultStoreDir = "pi/fras"

	// DefaultStoreFile is the SQLite file name inside DefaultStoreDir
	DefaultStoreFile = "face_features.db"
)
