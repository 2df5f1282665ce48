package enroll

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/database/mock"
	"github.com/kozaktomas/fras/internal/faceid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	faceColor   = color.RGBA{G: 255, A: 255}
	noFaceColor = color.RGBA{B: 255, A: 255}
)

// colorExtractor reports a face when the top-left pixel is green. The
// descriptor encodes the image width so tests can tell images apart.
type colorExtractor struct {
	err   error
	calls atomic.Int32
}

func (e *colorExtractor) Extract(_ context.Context, img image.Image) ([]database.Descriptor, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	r, g, b, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	if g == 0 || r != 0 || b != 0 {
		return nil, nil
	}
	d := make(database.Descriptor, 128)
	d[0] = float32(img.Bounds().Dx())
	return []database.Descriptor{d}, nil
}

func pngBytes(t *testing.T, w int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, 4))
	for x := range w {
		for y := range 4 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeImage(t *testing.T, dir, name string, w int, c color.Color) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, pngBytes(t, w, c), 0o644))
	return path
}

func TestEnroll_OneFace(t *testing.T) {
	store := mock.NewMockStore()
	svc := NewService(store, &colorExtractor{}, nil)

	out, err := svc.Enroll(context.Background(), "alice", FromBytes(pngBytes(t, 10, faceColor)))
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Label)
	assert.Equal(t, int64(1), out.RecordID)

	records, err := store.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Label)
	assert.Len(t, records[0].Descriptor, 128)
}

func TestEnroll_NoFaceLeavesStoreUnchanged(t *testing.T) {
	store := mock.NewMockStore()
	svc := NewService(store, &colorExtractor{}, nil)

	_, err := svc.Enroll(context.Background(), "alice", FromBytes(pngBytes(t, 10, noFaceColor)))
	assert.ErrorIs(t, err, ErrNoFace)
	assert.Zero(t, store.AppendCalls)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEnroll_FromPath(t *testing.T) {
	store := mock.NewMockStore()
	svc := NewService(store, &colorExtractor{}, nil)
	path := writeImage(t, t.TempDir(), "alice.png", 12, faceColor)

	out, err := svc.Enroll(context.Background(), "alice", FromPath(path))
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.RecordID)
}

func TestEnroll_RepeatedEnrollCreatesSeparateRecords(t *testing.T) {
	store := mock.NewMockStore()
	svc := NewService(store, &colorExtractor{}, nil)
	data := pngBytes(t, 10, faceColor)

	first, err := svc.Enroll(context.Background(), "alice", FromBytes(data))
	require.NoError(t, err)
	second, err := svc.Enroll(context.Background(), "alice", FromBytes(data))
	require.NoError(t, err)
	assert.NotEqual(t, first.RecordID, second.RecordID)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEnroll_StoresLabelVerbatim(t *testing.T) {
	store := mock.NewMockStore()
	svc := NewService(store, &colorExtractor{}, nil)
	ctx := context.Background()

	for _, label := range []string{" alice", "Jose\u0301"} {
		out, err := svc.Enroll(ctx, label, FromBytes(pngBytes(t, 10, faceColor)))
		require.NoError(t, err)
		assert.Equal(t, label, out.Label)
	}

	records, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, " alice", records[0].Label)
	assert.Equal(t, "Jose\u0301", records[1].Label)
}

func TestEnroll_Errors(t *testing.T) {
	storeDown := errors.New("disk on fire")
	face := pngBytes(t, 10, faceColor)

	tests := []struct {
		name       string
		label      string
		src        ImageSource
		extractErr error
		appendErr  error
		wantErr    error
	}{
		{"empty label", "", FromBytes(face), nil, nil, ErrInvalidInput},
		{"blank label", "   ", FromBytes(face), nil, nil, ErrInvalidInput},
		{"empty image", "alice", FromBytes(nil), nil, nil, ErrInvalidInput},
		{"undecodable image", "alice", FromBytes([]byte("garbage")), nil, nil, faceid.ErrUndecodable},
		{"missing file", "alice", FromPath("/nonexistent/alice.jpg"), nil, nil, os.ErrNotExist},
		{"extractor failure", "alice", FromBytes(face), storeDown, nil, storeDown},
		{"store failure", "alice", FromBytes(face), nil, storeDown, storeDown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mock.NewMockStore()
			store.AppendError = tc.appendErr
			svc := NewService(store, &colorExtractor{err: tc.extractErr}, nil)

			_, err := svc.Enroll(context.Background(), tc.label, tc.src)
			assert.ErrorIs(t, err, tc.wantErr)

			n, _ := store.Count(context.Background())
			assert.Zero(t, n)
		})
	}
}

func TestRemove(t *testing.T) {
	store := mock.NewMockStore()
	svc := NewService(store, &colorExtractor{}, nil)
	ctx := context.Background()

	for _, label := range []string{"alice", "bob", "alice"} {
		_, err := svc.Enroll(ctx, label, FromBytes(pngBytes(t, 10, faceColor)))
		require.NoError(t, err)
	}

	removed, err := svc.Remove(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = svc.Remove(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, removed)

	records, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].Label)
}

func TestRemove_ExactLabel(t *testing.T) {
	store := mock.NewMockStore()
	svc := NewService(store, &colorExtractor{}, nil)
	ctx := context.Background()

	// rows written by earlier tools may carry stray whitespace or decomposed accents
	for _, label := range []string{"bob ", "bob", "Jose\u0301"} {
		_, err := store.Append(ctx, label, database.Descriptor{1, 2})
		require.NoError(t, err)
	}

	removed, err := svc.Remove(ctx, "bob ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = svc.Remove(ctx, "Jose\u0301")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	records, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].Label)
}

func TestRemove_Errors(t *testing.T) {
	store := mock.NewMockStore()
	svc := NewService(store, &colorExtractor{}, nil)

	_, err := svc.Remove(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	store.DeleteError = database.ErrStoreUnavailable
	_, err = svc.Remove(context.Background(), "alice")
	assert.ErrorIs(t, err, database.ErrStoreUnavailable)
}
