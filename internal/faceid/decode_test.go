package faceid

import (
	"bytes"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	img := solidImage(32, 24, color.RGBA{G: 200, A: 255})

	var pngBuf, jpegBuf, gifBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	require.NoError(t, jpeg.Encode(&jpegBuf, img, nil))
	require.NoError(t, gif.Encode(&gifBuf, img, nil))

	for name, data := range map[string][]byte{
		"png":  pngBuf.Bytes(),
		"jpeg": jpegBuf.Bytes(),
		"gif":  gifBuf.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, 32, got.Bounds().Dx())
			assert.Equal(t, 24, got.Bounds().Dy())
		})
	}
}

func TestDecode_Undecodable(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("hello, world"),
		"truncated": {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.ErrorIs(t, err, ErrUndecodable)
		})
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(8, 8, color.White)))
	good := filepath.Join(dir, "face.png")
	require.NoError(t, os.WriteFile(good, buf.Bytes(), 0o644))

	img, err := DecodeFile(good)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("no pixels here"), 0o644))
	_, err = DecodeFile(bad)
	assert.ErrorIs(t, err, ErrUndecodable)

	_, err = DecodeFile(filepath.Join(dir, "missing.jpg"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUndecodable)
}
