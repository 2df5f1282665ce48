package faceid

import (
	"fmt"
	"image"
	"math"

	"github.com/kozaktomas/fras/internal/constants"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Mean face landmark positions in a unit square. The 5-point set matches the
// 5-point shape predictor order (eye corners right to left, then nose base).
var template5 = []Point{
	{0.8595674595992, 0.2134981538014},
	{0.6460604764104, 0.2289674387677},
	{0.1205750830319, 0.2137274526564},
	{0.3340850613712, 0.2290642403242},
	{0.4901123135679, 0.6277975316475},
}

// template68 covers points 17..67 of the 68-point model. The jaw line (0..16)
// is too unstable to align on.
var template68 = []Point{
	{0.000213256, 0.106454}, {0.0752622, 0.038915}, {0.18113, 0.0187482}, {0.29077, 0.0344891},
	{0.393397, 0.0773906}, {0.586856, 0.0773906}, {0.689483, 0.0344891}, {0.799124, 0.0187482},
	{0.904991, 0.038915}, {0.98004, 0.106454}, {0.490127, 0.203352}, {0.490127, 0.307009},
	{0.490127, 0.409805}, {0.490127, 0.515625}, {0.36688, 0.587326}, {0.426036, 0.609345},
	{0.490127, 0.628106}, {0.554217, 0.609345}, {0.613373, 0.587326}, {0.121737, 0.216423},
	{0.187122, 0.178758}, {0.265825, 0.179852}, {0.334606, 0.231733}, {0.260918, 0.245099},
	{0.182743, 0.244077}, {0.645647, 0.231733}, {0.714428, 0.179852}, {0.793132, 0.178758},
	{0.858516, 0.216423}, {0.79751, 0.244077}, {0.719335, 0.245099}, {0.254149, 0.780233},
	{0.340985, 0.745405}, {0.428858, 0.727388}, {0.490127, 0.742578}, {0.551395, 0.727388},
	{0.639268, 0.745405}, {0.726104, 0.780233}, {0.642159, 0.864805}, {0.556721, 0.902192},
	{0.490127, 0.909281}, {0.423532, 0.902192}, {0.338094, 0.864805}, {0.290379, 0.784792},
	{0.428096, 0.778746}, {0.490127, 0.785343}, {0.552157, 0.778746}, {0.689874, 0.784792},
	{0.553364, 0.824182}, {0.490127, 0.831803}, {0.42689, 0.824182},
}

// ValidLandmarkCount reports whether a shape has a point count the aligner supports.
func ValidLandmarkCount(n int) bool {
	return n == constants.LandmarksSmall || n == constants.LandmarksLarge
}

// anchors pairs the usable landmarks of shape with their template positions.
func anchors(shape Shape) ([]Point, []Point, error) {
	switch len(shape.Points) {
	case constants.LandmarksSmall:
		return shape.Points, template5, nil
	case constants.LandmarksLarge:
		return shape.Points[17:], template68, nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported landmark count %d", ErrAlignment, len(shape.Points))
	}
}

// similarity finds the least-squares similarity transform (rotation, uniform
// scale, translation) mapping src onto dst.
func similarity(src, dst []Point) (f64.Aff3, error) {
	if len(src) != len(dst) || len(src) < 2 {
		return f64.Aff3{}, fmt.Errorf("%w: need at least two point pairs", ErrAlignment)
	}

	var smx, smy, dmx, dmy float64
	for i := range src {
		smx += src[i].X
		smy += src[i].Y
		dmx += dst[i].X
		dmy += dst[i].Y
	}
	n := float64(len(src))
	smx, smy, dmx, dmy = smx/n, smy/n, dmx/n, dmy/n

	var a, b, v float64
	for i := range src {
		sx, sy := src[i].X-smx, src[i].Y-smy
		dx, dy := dst[i].X-dmx, dst[i].Y-dmy
		a += sx*dx + sy*dy
		b += sx*dy - sy*dx
		v += sx*sx + sy*sy
	}
	if v < 1e-9 || math.IsNaN(v) || math.IsInf(v, 0) {
		return f64.Aff3{}, fmt.Errorf("%w: degenerate landmarks", ErrAlignment)
	}

	p, q := a/v, b/v
	if p*p+q*q < 1e-12 {
		return f64.Aff3{}, fmt.Errorf("%w: degenerate transform", ErrAlignment)
	}
	tx := dmx - (p*smx - q*smy)
	ty := dmy - (q*smx + p*smy)

	return f64.Aff3{p, -q, tx, q, p, ty}, nil
}

// invert returns the inverse of a similarity transform built by similarity.
func invert(m f64.Aff3) f64.Aff3 {
	p, q := m[0], m[3]
	det := p*p + q*q
	ip, iq := p/det, -q/det
	return f64.Aff3{
		ip, -iq, -(ip*m[2] - iq*m[5]),
		iq, ip, -(iq*m[2] + ip*m[5]),
	}
}

func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// footprint is the image-space bounding box covered by a size x size chip.
func footprint(chipToImage f64.Aff3, size int) image.Rectangle {
	s := float64(size)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [][2]float64{{0, 0}, {s, 0}, {0, s}, {s, s}} {
		x, y := apply(chipToImage, c[0], c[1])
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// AlignChip warps the face described by shape into a size x size chip. The
// template is shrunk by padding on every side so the chip shows some context
// around the landmarks. Pixels outside the source image come out black.
func AlignChip(img image.Image, shape Shape, size int, padding float64) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chip size %d", ErrAlignment, size)
	}
	src, tmpl, err := anchors(shape)
	if err != nil {
		return nil, err
	}

	dst := make([]Point, len(tmpl))
	scale := float64(size) / (2*padding + 1)
	for i, p := range tmpl {
		dst[i] = Point{X: (padding + p.X) * scale, Y: (padding + p.Y) * scale}
	}

	imageToChip, err := similarity(src, dst)
	if err != nil {
		return nil, err
	}
	if !footprint(invert(imageToChip), size).Overlaps(img.Bounds()) {
		return nil, fmt.Errorf("%w: chip lies outside the image", ErrAlignment)
	}

	chip := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Transform(chip, imageToChip, img, img.Bounds(), draw.Src, nil)
	return chip, nil
}
