package faceid

import (
	"image"
	"image/color"
	"image/draw"
)

// solidImage returns a w x h image filled with c.
func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// placedShape lays a landmark template into image space at the given scale and offset.
func placedShape(tmpl []Point, scale, offX, offY float64) Shape {
	pts := make([]Point, len(tmpl))
	for i, p := range tmpl {
		pts[i] = Point{X: offX + p.X*scale, Y: offY + p.Y*scale}
	}
	return Shape{Points: pts}
}

// shape68 builds a 68-point shape whose jaw points are filler and whose
// remaining points follow the template.
func shape68(scale, offX, offY float64) Shape {
	pts := make([]Point, 17, 68)
	for i := range pts {
		pts[i] = Point{X: offX + float64(i), Y: offY + scale}
	}
	pts = append(pts, placedShape(template68, scale, offX, offY).Points...)
	return Shape{Points: pts}
}
