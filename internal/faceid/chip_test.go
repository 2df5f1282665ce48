package faceid

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	assert.Len(t, template5, 5)
	assert.Len(t, template68, 68-17)
}

func TestValidLandmarkCount(t *testing.T) {
	assert.True(t, ValidLandmarkCount(5))
	assert.True(t, ValidLandmarkCount(68))
	for _, n := range []int{0, 4, 6, 67, 69, 194} {
		assert.False(t, ValidLandmarkCount(n), "count %d", n)
	}
}

func TestSimilarity_RecoversKnownTransform(t *testing.T) {
	theta := math.Pi / 6
	scale := 2.0
	p, q := scale*math.Cos(theta), scale*math.Sin(theta)
	tx, ty := 5.0, -3.0

	src := []Point{{0, 0}, {1, 0}, {0, 1}, {3, 2}, {-1, 4}}
	dst := make([]Point, len(src))
	for i, s := range src {
		dst[i] = Point{X: p*s.X - q*s.Y + tx, Y: q*s.X + p*s.Y + ty}
	}

	m, err := similarity(src, dst)
	require.NoError(t, err)

	for i, s := range src {
		x, y := apply(m, s.X, s.Y)
		assert.InDelta(t, dst[i].X, x, 1e-9)
		assert.InDelta(t, dst[i].Y, y, 1e-9)
	}

	inv := invert(m)
	for i, d := range dst {
		x, y := apply(inv, d.X, d.Y)
		assert.InDelta(t, src[i].X, x, 1e-9)
		assert.InDelta(t, src[i].Y, y, 1e-9)
	}
}

func TestSimilarity_Degenerate(t *testing.T) {
	same := []Point{{3, 3}, {3, 3}, {3, 3}}
	_, err := similarity(same, []Point{{0, 0}, {1, 0}, {0, 1}})
	assert.ErrorIs(t, err, ErrAlignment)

	_, err = similarity([]Point{{0, 0}, {1, 0}, {0, 1}}, same)
	assert.ErrorIs(t, err, ErrAlignment)

	_, err = similarity([]Point{{0, 0}}, []Point{{0, 0}})
	assert.ErrorIs(t, err, ErrAlignment)
}

func TestAlignChip(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	img := solidImage(400, 400, red)

	tests := []struct {
		name  string
		shape Shape
	}{
		{"5 landmarks", placedShape(template5, 200, 100, 100)},
		{"68 landmarks", shape68(200, 100, 100)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chip, err := AlignChip(img, tc.shape, 150, 0.25)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 150, 150), chip.Bounds())
			c := chip.RGBAAt(75, 75)
			assert.Greater(t, c.R, uint8(250))
			assert.Less(t, c.G, uint8(5))
			assert.Less(t, c.B, uint8(5))
		})
	}
}

func TestAlignChip_TemplateLandsOnChipTemplate(t *testing.T) {
	shape := placedShape(template5, 200, 100, 100)
	src, tmpl, err := anchors(shape)
	require.NoError(t, err)

	size, padding := 150, 0.25
	scale := float64(size) / (2*padding + 1)
	dst := make([]Point, len(tmpl))
	for i, p := range tmpl {
		dst[i] = Point{X: (padding + p.X) * scale, Y: (padding + p.Y) * scale}
	}
	m, err := similarity(src, dst)
	require.NoError(t, err)

	// Pure scale plus translation: no rotation expected.
	assert.InDelta(t, 0, m[3], 1e-9)
	assert.InDelta(t, scale/200, m[0], 1e-9)
}

func TestAlignChip_Failures(t *testing.T) {
	img := solidImage(100, 100, color.White)

	tests := []struct {
		name  string
		shape Shape
	}{
		{"unsupported count", Shape{Points: make([]Point, 7)}},
		{"collapsed landmarks", Shape{Points: make([]Point, 5)}},
		{"outside the image", placedShape(template5, 50, 10000, 10000)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AlignChip(img, tc.shape, 150, 0.25)
			assert.ErrorIs(t, err, ErrAlignment)
		})
	}
}
