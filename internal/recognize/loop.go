package recognize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/facematch"
	"golang.org/x/time/rate"
)

// ErrSourceUnavailable is returned by Run when the image source cannot be opened
var ErrSourceUnavailable = errors.New("image source unavailable")

// Extractor produces at most one descriptor per image
type Extractor interface {
	Extract(ctx context.Context, img image.Image) ([]database.Descriptor, error)
}

// Options tunes a Loop
type Options struct {
	// Interval is the minimum time between the starts of two iterations. Zero runs back to back.
	Interval time.Duration
	// MaxIterations stops Run after this many iterations. Zero runs until cancelled.
	MaxIterations int
	Logger        *slog.Logger
}

// Loop repeatedly captures a frame and signals who, if anyone, is in it.
type Loop struct {
	source    Source
	extractor Extractor
	store     database.Store
	matcher   facematch.Matcher
	sink      Sink
	limiter   *rate.Limiter
	maxIter   int
	logger    *slog.Logger
	now       func() time.Time
}

// NewLoop creates a recognition loop
func NewLoop(source Source, extractor Extractor, store database.Store, matcher facematch.Matcher, sink Sink, opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &Loop{
		source:    source,
		extractor: extractor,
		store:     store,
		matcher:   matcher,
		sink:      sink,
		limiter:   rate.NewLimiter(limit, 1),
		maxIter:   opts.MaxIterations,
		logger:    logger,
		now:       time.Now,
	}
}

// Run opens the source and iterates until ctx is cancelled or MaxIterations
// is reached. Cancellation is observed only between iterations; an iteration
// in progress always finishes and signals. A source that cannot be opened is
// fatal and reported as ErrSourceUnavailable.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.source.Open(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer l.source.Close()

	l.logger.Info("recognition loop started", "threshold", l.matcher.Threshold, "policy", l.matcher.Policy)
	iterCtx := context.WithoutCancel(ctx)

	for i := 0; l.maxIter <= 0 || i < l.maxIter; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := l.limiter.Wait(ctx); err != nil {
			break
		}
		l.Step(iterCtx)
	}

	l.logger.Info("recognition loop stopped")
	return nil
}

// Step runs one iteration and signals its result exactly once.
func (l *Loop) Step(ctx context.Context) Result {
	r := l.recognize(ctx)
	r.ID = uuid.New()
	r.At = l.now()
	l.sink.Signal(r)
	return r
}

func (l *Loop) recognize(ctx context.Context) Result {
	img, err := l.source.Acquire(ctx)
	if err != nil {
		return Result{State: StateNoFaceOrError, Err: fmt.Errorf("acquire frame: %w", err)}
	}

	descriptors, err := l.extractor.Extract(ctx, img)
	if err != nil {
		return Result{State: StateNoFaceOrError, Err: fmt.Errorf("extract features: %w", err)}
	}
	if len(descriptors) == 0 {
		return Result{State: StateNoFaceOrError}
	}

	records, err := l.store.ScanAll(ctx)
	if err != nil {
		return Result{State: StateNoFaceOrError, Err: fmt.Errorf("load descriptors: %w", err)}
	}

	m, err := l.matcher.Match(descriptors[0], records)
	if err != nil {
		if errors.Is(err, facematch.ErrDimensionMismatch) {
			l.logger.Error("stored descriptor has the wrong dimension", "error", err)
		}
		return Result{State: StateNoFaceOrError, Err: fmt.Errorf("match: %w", err)}
	}
	if !m.Matched {
		return Result{State: StateNotMatched}
	}
	return Result{State: StateMatched, Label: m.Label, Distance: m.Distance}
}
