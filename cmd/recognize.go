package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kozaktomas/fras/internal/config"
	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/facematch"
	"github.com/kozaktomas/fras/internal/recognize"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Recognize enrolled faces continuously",
	Long: `Capture frames and match every detected face against the enrolled
descriptors until interrupted.

Examples:
  fras recognize
  fras recognize --image visitor.jpg --once
  fras recognize --threshold 0.5 --count 20`,
	Args: cobra.NoArgs,
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().String("image", "", "Recognize from this file instead of the camera")
	recognizeCmd.Flags().Bool("once", false, "Run a single iteration and print the result")
	recognizeCmd.Flags().Int("count", 0, "Stop after N iterations (0 runs until interrupted)")
	recognizeCmd.Flags().Float64("threshold", 0, "Match threshold (overrides MATCH_THRESHOLD)")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	applyThresholdFlag(cmd, cfg)
	iterations := mustGetInt(cmd, "count")
	once := mustGetBool(cmd, "once")
	if once {
		iterations = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	sinks, board, cleanup, err := newSinks(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	loop := recognize.NewLoop(newSource(cfg, mustGetString(cmd, "image")), pipeline, store,
		facematch.NewMatcher(cfg.Match.Threshold, cfg.Match.Policy), sinks,
		recognize.Options{Interval: cfg.Capture.Interval, MaxIterations: iterations, Logger: logger})

	if err := loop.Run(ctx); err != nil {
		return err
	}

	if once {
		if r, ok := board.Latest(); ok {
			printResult(r)
		}
	}
	return nil
}

// applyThresholdFlag overrides the configured threshold when --threshold was
// given, including an explicit 0 (which never matches).
func applyThresholdFlag(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("threshold") {
		cfg.Match.Threshold = mustGetFloat64(cmd, "threshold")
	}
}

func printResult(r recognize.Result) {
	fmt.Printf("State:    %s\n", r.State)
	switch {
	case r.State == recognize.StateMatched:
		fmt.Printf("Name:     %s\n", r.Label)
		fmt.Printf("Distance: %.4f\n", r.Distance)
	case r.Err != nil:
		fmt.Printf("Error:    %v\n", r.Err)
	}
}
