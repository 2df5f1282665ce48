package faceid

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/kozaktomas/fras/internal/config"
	"github.com/kozaktomas/fras/internal/constants"
	"github.com/kozaktomas/fras/internal/database"
)

// Pipeline extracts a single descriptor per image. It holds no mutable state
// and is safe for concurrent use when the bundle is.
type Pipeline struct {
	bundle   Bundle
	chipSize int
	padding  float64
	dim      int
	logger   *slog.Logger
}

// NewPipeline creates a pipeline. Zero values in cfg fall back to the model constants.
func NewPipeline(bundle Bundle, cfg config.ModelConfig, logger *slog.Logger) (*Pipeline, error) {
	if err := bundle.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		bundle:   bundle,
		chipSize: cfg.ChipSize,
		padding:  cfg.ChipPadding,
		dim:      cfg.DescriptorDim,
		logger:   logger,
	}
	if p.chipSize <= 0 {
		p.chipSize = constants.ChipSize
	}
	if p.padding < 0 {
		p.padding = constants.ChipPadding
	}
	if p.dim <= 0 {
		p.dim = constants.DescriptorDim
	}
	return p, nil
}

// Extract returns zero or one descriptors for img.
//
// Regions are visited in detector order. A region whose landmarks cannot be
// predicted, whose landmark count is not 5 or 68, or whose chip cannot be
// aligned, is skipped. Only the first chip that aligns is embedded. Finding no
// usable face is not an error; landmark failures are returned only when no
// region produced a chip.
func (p *Pipeline) Extract(ctx context.Context, img image.Image) ([]database.Descriptor, error) {
	regions, err := p.bundle.Detector.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	if len(regions) == 0 {
		p.logger.Debug("no faces found in the image")
		return nil, nil
	}

	var predictErr error
	for i, region := range regions {
		shape, err := p.bundle.Predictor.Predict(ctx, img, region)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("predict landmarks for face %d: %w", i, err)
			}
			p.logger.Warn("failed to predict landmarks", "face", i, "error", err)
			predictErr = errors.Join(predictErr, fmt.Errorf("predict landmarks for face %d: %w", i, err))
			continue
		}
		p.logger.Debug("detected landmarks", "face", i, "count", len(shape.Points))

		if !ValidLandmarkCount(len(shape.Points)) {
			p.logger.Warn("invalid number of landmarks", "face", i, "count", len(shape.Points))
			continue
		}

		chip, err := AlignChip(img, shape, p.chipSize, p.padding)
		if err != nil {
			if errors.Is(err, ErrAlignment) {
				p.logger.Warn("failed to extract face chip", "face", i, "error", err)
				continue
			}
			return nil, err
		}

		desc, err := p.bundle.Embedder.Embed(ctx, chip)
		if err != nil {
			return nil, fmt.Errorf("embed face %d: %w", i, err)
		}
		if len(desc) != p.dim {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(desc), p.dim)
		}
		return []database.Descriptor{desc}, nil
	}

	if predictErr != nil {
		return nil, predictErr
	}
	p.logger.Debug("no valid face chips could be extracted", "faces", len(regions))
	return nil, nil
}

// ExtractBytes decodes data and runs Extract on the result.
func (p *Pipeline) ExtractBytes(ctx context.Context, data []byte) ([]database.Descriptor, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return p.Extract(ctx, img)
}
