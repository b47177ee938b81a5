package draw

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Point is a position in surface-local pixels.
type Point struct {
	X, Y float64
}

// Composite says how a segment's pixels combine with what is already there.
type Composite int

const (
	// SourceOver paints over existing pixels with normal alpha blending.
	SourceOver Composite = iota
	// DestinationOut makes covered pixels transparent.
	DestinationOut
)

// Segment is one straight, round-capped stroke piece.
//
// Alpha scales the colour's own alpha for SourceOver and the strength of the
// clearing for DestinationOut.
type Segment struct {
	From, To Point
	Width    float64
	Color    color.NRGBA
	Alpha    float64
	Op       Composite
}

// Canvas is the raster buffer behind a surface. Pixels are premultiplied
// RGBA; a new or cleared canvas is fully transparent.
type Canvas struct {
	pix  *image.RGBA
	rast vector.Rasterizer
}

// NewCanvas allocates a transparent w×h buffer.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.SetSize(w, h)
	return c
}

func (c *Canvas) Width() int  { return c.pix.Rect.Dx() }
func (c *Canvas) Height() int { return c.pix.Rect.Dy() }

func (c *Canvas) Bounds() image.Rectangle { return c.pix.Rect }

// Image returns the live buffer. It is replaced by SetSize, so callers
// should not hold on to it across a resize.
func (c *Canvas) Image() *image.RGBA { return c.pix }

// SetSize replaces the buffer with a blank one of the given size. Like a
// browser canvas, changing dimensions throws away every pixel.
func (c *Canvas) SetSize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.pix = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Snapshot copies the entire buffer.
func (c *Canvas) Snapshot() *image.RGBA {
	cp := image.NewRGBA(c.pix.Rect)
	copy(cp.Pix, c.pix.Pix)
	return cp
}

// Put writes img back with its top-left corner at at. Pixels replace what is
// underneath and anything outside the buffer is clipped.
func (c *Canvas) Put(img image.Image, at image.Point) {
	xdraw.Copy(c.pix, at, img, img.Bounds(), xdraw.Src, nil)
}

// Clear wipes the buffer to fully transparent.
func (c *Canvas) Clear() {
	clear(c.pix.Pix)
}

// Stroke rasterizes one segment. Only the segment's bounding box is touched.
func (c *Canvas) Stroke(s Segment) {
	if s.Width <= 0 || s.Alpha <= 0 {
		return
	}
	r := s.Width / 2
	box := image.Rect(
		int(math.Floor(math.Min(s.From.X, s.To.X)-r))-1,
		int(math.Floor(math.Min(s.From.Y, s.To.Y)-r))-1,
		int(math.Ceil(math.Max(s.From.X, s.To.X)+r))+1,
		int(math.Ceil(math.Max(s.From.Y, s.To.Y)+r))+1,
	).Intersect(c.pix.Rect)
	if box.Empty() {
		return
	}

	c.rast.Reset(box.Dx(), box.Dy())
	origin := Point{X: float64(box.Min.X), Y: float64(box.Min.Y)}
	capsule(&c.rast, sub(s.From, origin), sub(s.To, origin), r)

	switch s.Op {
	case DestinationOut:
		mask := image.NewAlpha(box)
		c.rast.DrawOp = xdraw.Src
		c.rast.Draw(mask, box, image.Opaque, image.Point{})
		eraseMasked(c.pix, mask, s.Alpha)
	default:
		c.rast.DrawOp = xdraw.Over
		c.rast.Draw(c.pix, box, image.NewUniform(withAlpha(s.Color, s.Alpha)), image.Point{})
	}
}

// eraseMasked scales every premultiplied channel under mask by
// 1-coverage*alpha, which is destination-out for an opaque source.
func eraseMasked(dst *image.RGBA, mask *image.Alpha, alpha float64) {
	if alpha > 1 {
		alpha = 1
	}
	r := mask.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := uint32(math.Round(float64(mask.AlphaAt(x, y).A) * alpha))
			if m == 0 {
				continue
			}
			k := 0xff - m
			i := dst.PixOffset(x, y)
			px := dst.Pix[i : i+4 : i+4]
			for j := range px {
				px[j] = uint8((uint32(px[j])*k + 0x7f) / 0xff)
			}
		}
	}
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	if alpha >= 1 {
		return c
	}
	c.A = uint8(math.Round(float64(c.A) * alpha))
	return c
}

func sub(p, q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// capsule adds the outline of a round-capped line of radius r from a to b.
// A zero-length segment becomes a circle.
func capsule(z *vector.Rasterizer, a, b Point, r float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		dx, dy, l = 1, 0, 1
	}
	nx, ny := -dy/l*r, dx/l*r
	start := math.Atan2(ny, nx)

	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	arc(z, b, r, start, start-math.Pi)
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	arc(z, a, r, start-math.Pi, start-2*math.Pi)
	z.ClosePath()
}

// arc approximates a circular arc with two cubic Béziers.
func arc(z *vector.Rasterizer, c Point, r, a0, a1 float64) {
	const n = 2
	step := (a1 - a0) / n
	k := 4.0 / 3.0 * math.Tan(step/4) * r
	for i := 0; i < n; i++ {
		s0 := a0 + float64(i)*step
		s1 := s0 + step
		cos0, sin0 := math.Cos(s0), math.Sin(s0)
		cos1, sin1 := math.Cos(s1), math.Sin(s1)
		p0x, p0y := c.X+r*cos0, c.Y+r*sin0
		p3x, p3y := c.X+r*cos1, c.Y+r*sin1
		z.CubeTo(
			float32(p0x-k*sin0), float32(p0y+k*cos0),
			float32(p3x+k*sin1), float32(p3y-k*cos1),
			float32(p3x), float32(p3y),
		)
	}
}
