package recognize

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/kozaktomas/fras/internal/config"
)

// Sink receives the result of every iteration. Signal must not block for long.
type Sink interface {
	Signal(Result)
}

// MultiSink fans a result out to several sinks in order
type MultiSink []Sink

// Signal forwards r to every sink
func (m MultiSink) Signal(r Result) {
	for _, s := range m {
		s.Signal(r)
	}
}

// LogSink logs each result
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a logging sink
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Signal logs r at a level matching its state
func (s *LogSink) Signal(r Result) {
	switch r.State {
	case StateMatched:
		s.logger.Info("match found", "name", r.Label, "distance", r.Distance, "id", r.ID)
	case StateNotMatched:
		s.logger.Info("no match found", "id", r.ID)
	default:
		if r.Err != nil {
			s.logger.Warn("recognition failed", "error", r.Err, "id", r.ID)
			return
		}
		s.logger.Debug("no face detected", "id", r.ID)
	}
}

// LEDSink drives three status LEDs through sysfs brightness files.
// Green lights on a match, red on no match, yellow on no face or error.
type LEDSink struct {
	green, red, yellow string
	logger             *slog.Logger
}

// NewLEDSink creates an LED sink from configuration
func NewLEDSink(cfg config.LEDConfig, logger *slog.Logger) (*LEDSink, error) {
	if !cfg.Enabled() {
		return nil, errors.New("LED_GREEN, LED_RED and LED_YELLOW must all be set")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LEDSink{green: cfg.Green, red: cfg.Red, yellow: cfg.Yellow, logger: logger}, nil
}

// Signal lights the LED for r's state and turns the other two off
func (s *LEDSink) Signal(r Result) {
	lit := s.yellow
	switch r.State {
	case StateMatched:
		lit = s.green
	case StateNotMatched:
		lit = s.red
	}
	if err := s.set(lit); err != nil {
		s.logger.Warn("failed to set status LED", "error", err)
	}
}

// Off turns all LEDs off
func (s *LEDSink) Off() error {
	return s.set("")
}

func (s *LEDSink) set(lit string) error {
	var errs []error
	for _, path := range []string{s.green, s.red, s.yellow} {
		value := "0"
		if path == lit {
			value = "1"
		}
		if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// Board keeps the latest result for readers such as the status endpoint.
type Board struct {
	mu         sync.RWMutex
	last       Result
	iterations int64
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{}
}

// Signal records r as the latest result
func (b *Board) Signal(r Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = r
	b.iterations++
}

// Latest returns the most recent result and whether any iteration has finished
func (b *Board) Latest() (Result, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, b.iterations > 0
}

// Iterations returns how many results have been recorded
func (b *Board) Iterations() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.iterations
}
