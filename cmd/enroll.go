package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/kozaktomas/fras/internal/constants"
	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/enroll"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image> <name> | enroll --dir <dir> <name>",
	Short: "Enroll a face under a name",
	Long: `Compute the face descriptor of an image and store it under a name.
With --dir every image in the directory is enrolled under the same name.

Examples:
  fras enroll alice.jpg Alice
  fras enroll --dir ./photos/alice Alice --concurrency 2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("dir", "", "Enroll every image in this directory")
	enrollCmd.Flags().Int("concurrency", constants.DefaultConcurrency, "Number of images processed in parallel with --dir")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	dir := mustGetString(cmd, "dir")
	if dir == "" && len(args) != 2 {
		return errors.New("expected <image> <name>")
	}
	if dir != "" && len(args) != 1 {
		return errors.New("expected <name> with --dir")
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
	svc := enroll.NewService(store, pipeline, logger)

	if dir != "" {
		return enrollDir(ctx, svc, args[0], dir, mustGetInt(cmd, "concurrency"))
	}

	out, err := svc.Enroll(ctx, args[1], enroll.FromPath(args[0]))
	if errors.Is(err, enroll.ErrNoFace) {
		return fmt.Errorf("no faces detected in %s", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Printf("Features saved successfully. (id %d, name %q)\n", out.RecordID, out.Label)
	return nil
}

func enrollDir(ctx context.Context, svc *enroll.Service, name, dir string, concurrency int) error {
	files, err := enroll.ListImages(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No images found in %s\n", dir)
		return nil
	}

	fmt.Printf("Enrolling %d images as %q (concurrency %d)\n", len(files), name, concurrency)
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	summary, err := svc.EnrollDir(ctx, name, dir, concurrency, func(enroll.FileResult) {
		bar.Add(1)
	})
	bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	for _, r := range summary.Results {
		switch {
		case r.Err == nil:
		case errors.Is(r.Err, enroll.ErrNoFace):
			fmt.Printf("  no face: %s\n", filepath.Base(r.Path))
		default:
			fmt.Printf("  failed:  %s: %v\n", filepath.Base(r.Path), r.Err)
		}
	}
	fmt.Printf("\nEnrolled: %d, no face: %d, failed: %d (of %d)\n",
		summary.Enrolled, summary.NoFace, summary.Failed, summary.Total)

	if summary.Enrolled == 0 {
		return fmt.Errorf("no descriptors enrolled from %s", dir)
	}
	return nil
}
