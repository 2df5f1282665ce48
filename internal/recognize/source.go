package recognize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kozaktomas/fras/internal/constants"
	"github.com/kozaktomas/fras/internal/faceid"
)

// maxFrameSize caps a single captured frame
const maxFrameSize = 64 << 20

// Source delivers one frame per Acquire call. Open is called once before the
// first frame; a failure there stops the loop before it starts.
type Source interface {
	Open(ctx context.Context) error
	Acquire(ctx context.Context) (image.Image, error)
	Close() error
}

// FileSource re-reads the same image file on every iteration
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Open checks the file exists
func (s *FileSource) Open(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("image file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("image file %s is a directory", s.path)
	}
	return nil
}

// Acquire reads and decodes the file
func (s *FileSource) Acquire(_ context.Context) (image.Image, error) {
	return faceid.DecodeFile(s.path)
}

// Close is a no-op
func (s *FileSource) Close() error { return nil }

// CommandSource runs an external capture program that writes one encoded
// frame to stdout, e.g. libcamera-jpeg on a Raspberry Pi.
type CommandSource struct {
	argv    []string
	timeout time.Duration
}

// NewCommandSource creates a command-backed source. A non-positive timeout
// uses the default capture timeout.
func NewCommandSource(argv []string, timeout time.Duration) *CommandSource {
	if timeout <= 0 {
		timeout = constants.DefaultCaptureTimeout
	}
	return &CommandSource{argv: argv, timeout: timeout}
}

// Open checks the capture program can be found
func (s *CommandSource) Open(_ context.Context) error {
	if len(s.argv) == 0 {
		return errors.New("capture command is empty")
	}
	if _, err := exec.LookPath(s.argv[0]); err != nil {
		return fmt.Errorf("capture command: %w", err)
	}
	return nil
}

// Acquire runs the capture program once and decodes its output
func (s *CommandSource) Acquire(ctx context.Context) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("capture failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return faceid.Decode(stdout.Bytes())
}

// Close is a no-op
func (s *CommandSource) Close() error { return nil }

// SnapshotSource fetches frames from an HTTP camera snapshot endpoint
type SnapshotSource struct {
	url    string
	client *http.Client
}

// NewSnapshotSource creates an HTTP snapshot source
func NewSnapshotSource(url string, timeout time.Duration) *SnapshotSource {
	if timeout <= 0 {
		timeout = constants.DefaultCaptureTimeout
	}
	return &SnapshotSource{url: url, client: &http.Client{Timeout: timeout}}
}

// Open fetches one frame to prove the camera answers
func (s *SnapshotSource) Open(ctx context.Context) error {
	if _, err := s.fetch(ctx); err != nil {
		return fmt.Errorf("camera snapshot: %w", err)
	}
	return nil
}

// Acquire downloads and decodes a snapshot
func (s *SnapshotSource) Acquire(ctx context.Context) (image.Image, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return faceid.Decode(data)
}

func (s *SnapshotSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Close releases idle connections
func (s *SnapshotSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
