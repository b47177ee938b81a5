package draw

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func assertAllWhite(t *testing.T, img image.Image) {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if r != 0xffff || g != 0xffff || bl != 0xffff || a != 0xffff {
				t.Fatalf("pixel (%d,%d) = %v, want opaque white", x, y, img.At(x, y))
			}
		}
	}
}

func TestExportAfterClearIsWhite(t *testing.T) {
	s := newFakeSurface(64, 48)
	c := Bind(s, redBrush(8))
	defer c.Close()

	s.emit(down(5, 5), move(60, 40), up())
	c.Clear()

	data, err := c.Export()
	require.NoError(t, err)
	img := decode(t, data)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
	assertAllWhite(t, img)
}

func TestExportErasedAreaIsWhite(t *testing.T) {
	s := newFakeSurface(50, 50)
	c := Bind(s, redBrush(10))
	defer c.Close()

	s.emit(down(10, 25), move(40, 25), up())
	c.SetBrush(c.Brush().WithEraser(true).WithWidth(30))
	s.emit(down(5, 25), move(45, 25), up())

	data, err := c.Export()
	require.NoError(t, err)
	assertAllWhite(t, decode(t, data))
}

func TestExportKeepsStrokes(t *testing.T) {
	s := newFakeSurface(50, 50)
	c := Bind(s, redBrush(6))
	defer c.Close()

	s.emit(down(10, 25), move(40, 25), up())

	img, err := c.Flatten()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, img.RGBAAt(25, 25))
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, img.RGBAAt(25, 5))

	// Exporting leaves the live buffer untouched.
	assert.Equal(t, color.RGBA{}, s.canvas.Image().RGBAAt(25, 5))
}

func TestExportTranslucentOverWhite(t *testing.T) {
	s := newFakeSurface(40, 40)
	c := Bind(s, DefaultBrush())
	defer c.Close()
	fill(s.canvas, color.RGBA{A: 0x80})

	img, err := c.Flatten()
	require.NoError(t, err)
	px := img.RGBAAt(20, 20)
	assert.Equal(t, uint8(0xff), px.A)
	assert.InDelta(t, 0x7f, int(px.R), 1)
}

func TestExportToWritesNothingWhenUnavailable(t *testing.T) {
	s := newFakeSurface(10, 10)
	s.noContext = true
	c := Bind(s, DefaultBrush())
	defer c.Close()

	var buf bytes.Buffer
	err := c.ExportTo(&buf)
	assert.ErrorIs(t, err, ErrExportUnavailable)
	assert.ErrorIs(t, err, ErrNoContext)
	assert.Zero(t, buf.Len())
}

func TestExportEmptyBuffer(t *testing.T) {
	s := newFakeSurface(0, 0)
	c := Bind(s, DefaultBrush())
	defer c.Close()

	_, err := c.Export()
	assert.ErrorIs(t, err, ErrExportUnavailable)
}
