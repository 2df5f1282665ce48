package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/fras/internal/config"
	"github.com/kozaktomas/fras/internal/recognize"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	cfg := &config.Config{}
	cfg.Capture.Command = []string{"fswebcam", "-"}

	assert.IsType(t, &recognize.FileSource{}, newSource(cfg, "frame.jpg"), "image flag selects a file source")
	assert.IsType(t, &recognize.CommandSource{}, newSource(cfg, ""), "command source is the default")

	cfg.Capture.URL = "http://camera.local/snapshot.jpg"
	assert.IsType(t, &recognize.SnapshotSource{}, newSource(cfg, ""), "CAPTURE_URL selects a snapshot source")
	assert.IsType(t, &recognize.FileSource{}, newSource(cfg, "frame.jpg"), "image flag takes precedence over CAPTURE_URL")
}

func TestNewSinks_WithoutLEDs(t *testing.T) {
	sinks, board, cleanup, err := newSinks(&config.Config{}, nil)
	require.NoError(t, err)
	defer cleanup()

	assert.Len(t, sinks, 2, "log and board sinks")
	require.NotNil(t, board)
	sinks.Signal(recognize.Result{State: recognize.StateNotMatched})
	assert.Equal(t, int64(1), board.Iterations())
}

func TestNewSinks_PartialLEDs(t *testing.T) {
	cfg := &config.Config{}
	cfg.LEDs.Green = "/sys/class/leds/green/brightness"

	_, _, _, err := newSinks(cfg, nil)
	assert.Error(t, err, "only some LED paths are set")
}

func TestNewSinks_LEDsOffOnCleanup(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.LEDs = config.LEDConfig{
		Green:  filepath.Join(dir, "green"),
		Red:    filepath.Join(dir, "red"),
		Yellow: filepath.Join(dir, "yellow"),
	}

	sinks, _, cleanup, err := newSinks(cfg, nil)
	require.NoError(t, err)
	sinks.Signal(recognize.Result{State: recognize.StateMatched, Label: "alice"})

	got, err := os.ReadFile(cfg.LEDs.Green)
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))

	cleanup()
	for _, path := range []string{cfg.LEDs.Green, cfg.LEDs.Red, cfg.LEDs.Yellow} {
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "0", string(got), filepath.Base(path))
	}
}

func TestApplyThresholdFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want float64
	}{
		{"flag not given keeps configured threshold", nil, 0.6},
		{"explicit zero overrides", []string{"--threshold", "0"}, 0},
		{"explicit value overrides", []string{"--threshold=0.45"}, 0.45},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &cobra.Command{Use: "recognize"}
			c.Flags().Float64("threshold", 0, "")
			require.NoError(t, c.ParseFlags(tc.args))

			cfg := &config.Config{}
			cfg.Match.Threshold = 0.6
			applyThresholdFlag(c, cfg)

			assert.InDelta(t, tc.want, cfg.Match.Threshold, 1e-9)
		})
	}
}
