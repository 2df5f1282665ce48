package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/enroll"
	"github.com/kozaktomas/fras/internal/facematch"
	"github.com/kozaktomas/fras/internal/recognize"
	"github.com/kozaktomas/fras/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the fras HTTP API for enrolling and removing faces.

With --recognize the continuous recognition loop runs in the same process
and its latest result is reported by GET /api/v0/run.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().Bool("recognize", false, "Also run continuous recognition")
	serveCmd.Flags().String("image", "", "Recognize from this file instead of the camera")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
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

	deps := web.Deps{Enroller: enroll.NewService(store, pipeline, logger)}
	if lister, ok := store.(database.LabelLister); ok {
		deps.Labels = lister
	}

	var loop *recognize.Loop
	if mustGetBool(cmd, "recognize") {
		sinks, board, cleanup, err := newSinks(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		deps.Board = board
		matcher := facematch.NewMatcher(cfg.Match.Threshold, cfg.Match.Policy)
		loop = recognize.NewLoop(newSource(cfg, mustGetString(cmd, "image")), pipeline, store, matcher, sinks,
			recognize.Options{Interval: cfg.Capture.Interval, Logger: logger})
	}

	server := web.NewServer(cfg, deps, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	if loop != nil {
		g.Go(func() error { return loop.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	fmt.Printf("Starting fras on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	return g.Wait()
}
