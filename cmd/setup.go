package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kozaktomas/fras/internal/config"
	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/database/mariadb"
	"github.com/kozaktomas/fras/internal/database/postgres"
	"github.com/kozaktomas/fras/internal/database/sqlite"
	"github.com/kozaktomas/fras/internal/faceid"
	"github.com/kozaktomas/fras/internal/recognize"
)

func init() {
	database.RegisterBackend(database.BackendSQLite, sqlite.Open)
	database.RegisterBackend(database.BackendPostgres, postgres.Open)
	database.RegisterBackend(database.BackendMariaDB, mariadb.Open)
}

// loadConfig loads and validates configuration and installs the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(cfg.Log)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newPipeline connects to the model server. An unreachable server is only
// logged; requests fail individually until it comes up.
func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*faceid.Pipeline, error) {
	client := faceid.NewModelClient(cfg.Model)
	if err := client.Health(ctx); err != nil {
		logger.Warn("model server not reachable", "model", client.Model(), "error", err)
	}
	pipeline, err := faceid.NewPipeline(faceid.NewBundle(client), cfg.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("loading face models: %w", err)
	}
	return pipeline, nil
}

// newSource picks the frame source: a static file when given, then the
// snapshot URL, then the capture command.
func newSource(cfg *config.Config, imagePath string) recognize.Source {
	switch {
	case imagePath != "":
		return recognize.NewFileSource(imagePath)
	case cfg.Capture.URL != "":
		return recognize.NewSnapshotSource(cfg.Capture.URL, cfg.Capture.Timeout)
	default:
		return recognize.NewCommandSource(cfg.Capture.Command, cfg.Capture.Timeout)
	}
}

// newSinks builds the result sinks. The returned cleanup turns the LEDs off.
func newSinks(cfg *config.Config, logger *slog.Logger) (recognize.MultiSink, *recognize.Board, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	board := recognize.NewBoard()
	sinks := recognize.MultiSink{recognize.NewLogSink(logger), board}
	cleanup := func() {}

	leds := cfg.LEDs
	if leds.Green == "" && leds.Red == "" && leds.Yellow == "" {
		return sinks, board, cleanup, nil
	}
	led, err := recognize.NewLEDSink(leds, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup = func() {
		if err := led.Off(); err != nil {
			logger.Warn("failed to turn LEDs off", "error", err)
		}
	}
	return append(sinks, led), board, cleanup, nil
}
