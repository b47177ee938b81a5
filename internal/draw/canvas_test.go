package draw

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	black = color.NRGBA{A: 0xff}
)

func fill(cv *Canvas, c color.RGBA) {
	img := cv.Image()
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestCanvasStrokePencil(t *testing.T) {
	cv := NewCanvas(100, 100)
	cv.Stroke(Segment{From: Point{10, 50}, To: Point{90, 50}, Width: 6, Color: red, Alpha: 1})

	img := cv.Image()
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, img.RGBAAt(50, 50), "line centre")
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, img.RGBAAt(50, 48), "inside half width")
	assert.Equal(t, color.RGBA{}, img.RGBAAt(50, 40), "outside the line")
	assert.NotZero(t, img.RGBAAt(8, 50).A, "round cap past the start point")
	assert.Equal(t, color.RGBA{}, img.RGBAAt(5, 50), "beyond the cap")
}

func TestCanvasStrokeZeroLengthDot(t *testing.T) {
	cv := NewCanvas(40, 40)
	cv.Stroke(Segment{From: Point{20, 20}, To: Point{20, 20}, Width: 8, Color: black, Alpha: 1})

	img := cv.Image()
	assert.Equal(t, uint8(0xff), img.RGBAAt(20, 20).A)
	assert.Equal(t, uint8(0xff), img.RGBAAt(18, 21).A)
	assert.Zero(t, img.RGBAAt(20, 30).A)
}

func TestCanvasStrokeAlpha(t *testing.T) {
	cv := NewCanvas(40, 40)
	cv.Stroke(Segment{From: Point{5, 20}, To: Point{35, 20}, Width: 10, Color: black, Alpha: 0.3})

	a := cv.Image().RGBAAt(20, 20).A
	assert.InDelta(t, 77, int(a), 1, "30%% of opaque")
}

func TestCanvasStrokeDestinationOut(t *testing.T) {
	cv := NewCanvas(60, 60)
	fill(cv, color.RGBA{G: 0xff, A: 0xff})

	cv.Stroke(Segment{From: Point{10, 30}, To: Point{50, 30}, Width: 10, Color: black, Alpha: 1, Op: DestinationOut})

	img := cv.Image()
	assert.Equal(t, color.RGBA{}, img.RGBAAt(30, 30), "erased")
	assert.Equal(t, color.RGBA{}, img.RGBAAt(30, 27))
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, img.RGBAAt(30, 10), "untouched")
}

func TestCanvasStrokeClipsOutsideBuffer(t *testing.T) {
	cv := NewCanvas(20, 20)
	require.NotPanics(t, func() {
		cv.Stroke(Segment{From: Point{-50, -50}, To: Point{-10, -10}, Width: 4, Color: black, Alpha: 1})
		cv.Stroke(Segment{From: Point{-10, 10}, To: Point{30, 10}, Width: 4, Color: black, Alpha: 1})
	})
	img := cv.Image()
	assert.Equal(t, uint8(0xff), img.RGBAAt(0, 10).A)
	assert.Equal(t, uint8(0xff), img.RGBAAt(19, 10).A)
	assert.Zero(t, img.RGBAAt(0, 0).A)
}

func TestCanvasStrokeIgnoresDegenerate(t *testing.T) {
	cv := NewCanvas(20, 20)
	cv.Stroke(Segment{From: Point{0, 0}, To: Point{20, 20}, Width: 0, Color: black, Alpha: 1})
	cv.Stroke(Segment{From: Point{0, 0}, To: Point{20, 20}, Width: 4, Color: black, Alpha: 0})
	assert.Equal(t, make([]uint8, len(cv.Image().Pix)), cv.Image().Pix)
}

func TestCanvasSetSizeDiscardsPixels(t *testing.T) {
	cv := NewCanvas(10, 10)
	fill(cv, color.RGBA{R: 0xff, A: 0xff})

	cv.SetSize(12, 8)
	assert.Equal(t, 12, cv.Width())
	assert.Equal(t, 8, cv.Height())
	assert.Equal(t, color.RGBA{}, cv.Image().RGBAAt(1, 1))

	cv.SetSize(-1, 5)
	assert.Equal(t, 0, cv.Width())
}

func TestCanvasSnapshotIsACopy(t *testing.T) {
	cv := NewCanvas(4, 4)
	snap := cv.Snapshot()
	fill(cv, color.RGBA{B: 0xff, A: 0xff})
	assert.Equal(t, color.RGBA{}, snap.RGBAAt(0, 0))
}

func TestCanvasPutClips(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	src.SetRGBA(9, 9, color.RGBA{R: 0xff, A: 0xff})
	src.SetRGBA(2, 2, color.RGBA{B: 0xff, A: 0xff})

	cv := NewCanvas(5, 5)
	cv.Put(src, image.Point{})
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, cv.Image().RGBAAt(2, 2))
	assert.Equal(t, 5, cv.Width())
}

func TestCanvasClear(t *testing.T) {
	cv := NewCanvas(6, 6)
	fill(cv, color.RGBA{R: 0xff, A: 0xff})
	cv.Clear()
	assert.Equal(t, make([]uint8, len(cv.Image().Pix)), cv.Image().Pix)
}
