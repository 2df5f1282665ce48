package recognize

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/fras/internal/faceid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir)

	s := NewFileSource(path)
	require.NoError(t, s.Open(context.Background()))
	img, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.NoError(t, s.Close())

	assert.Error(t, NewFileSource(filepath.Join(dir, "missing.png")).Open(context.Background()))
	assert.Error(t, NewFileSource(dir).Open(context.Background()))
}

func TestCommandSource(t *testing.T) {
	path := writePNG(t, t.TempDir())

	s := NewCommandSource([]string{"cat", path}, time.Second)
	require.NoError(t, s.Open(context.Background()))
	img, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestCommandSource_MissingExecutable(t *testing.T) {
	s := NewCommandSource([]string{"fras-no-such-camera-tool"}, 0)
	assert.Error(t, s.Open(context.Background()))

	assert.Error(t, NewCommandSource(nil, 0).Open(context.Background()))
}

func TestCommandSource_Failures(t *testing.T) {
	s := NewCommandSource([]string{"false"}, time.Second)
	_, err := s.Acquire(context.Background())
	assert.Error(t, err)

	s = NewCommandSource([]string{"echo", "not a jpeg"}, time.Second)
	_, err = s.Acquire(context.Background())
	assert.ErrorIs(t, err, faceid.ErrUndecodable)
}

func TestSnapshotSource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 6, 6))))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/snapshot.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	s := NewSnapshotSource(srv.URL+"/snapshot.jpg", time.Second)
	require.NoError(t, s.Open(context.Background()))
	img, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.NoError(t, s.Close())

	bad := NewSnapshotSource(srv.URL+"/other", time.Second)
	assert.Error(t, bad.Open(context.Background()))
}

func TestRun_CommandSourceMissingIsFatal(t *testing.T) {
	loop := NewLoop(NewCommandSource([]string{"fras-no-such-camera-tool"}, 0), &scriptedExtractor{}, nil, matcher, &recordingSink{}, Options{})
	err := loop.Run(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}
