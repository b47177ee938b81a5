package draw

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// DefaultFilename is what hosts name a downloaded wall.
const DefaultFilename = "live-draws.png"

// Exporter produces a flattened copy of a drawing.
type Exporter interface {
	Flatten() (*image.RGBA, error)
}

// Flatten returns an opaque copy of the buffer: white underneath, the drawing
// composited on top, so erased or untouched pixels come out white.
func (c *Controller) Flatten() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cv, err := c.canvasLocked()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportUnavailable, err)
	}
	return flatten(cv.Image())
}

// Export encodes the flattened buffer as PNG.
func (c *Controller) Export() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.ExportTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportTo writes the flattened buffer to w as PNG. Nothing is written when
// the buffer cannot be flattened.
func (c *Controller) ExportTo(w io.Writer) error {
	img, err := c.Flatten()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func flatten(src *image.RGBA) (*image.RGBA, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty buffer", ErrExportUnavailable)
	}
	out := image.NewRGBA(b)
	xdraw.Draw(out, b, image.White, image.Point{}, xdraw.Src)
	xdraw.Draw(out, b, src, b.Min, xdraw.Over)
	return out, nil
}
