package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveDraws/internal/config"
	"LiveDraws/internal/draw"
	"LiveDraws/internal/state"
)

func press(b *Board, x, y float32) {
	b.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	})
}

func drag(b *Board, x, y float32) {
	b.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}})
}

func release(b *Board, x, y float32) {
	b.MouseUp(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	})
}

func scaledBoard(t *testing.T, w, h, scale float32) *Board {
	t.Helper()
	test.NewTempApp(t)
	b := NewBoard()
	b.scale = func() float32 { return scale }
	test.WidgetRenderer(b)
	b.Resize(fyne.NewSize(w, h))
	return b
}

func mountedBoard(t *testing.T, w, h float32) *Board {
	t.Helper()
	return scaledBoard(t, w, h, 1)
}

func TestBoardUnmountedBox(t *testing.T) {
	test.NewTempApp(t)
	b := NewBoard()
	b.scale = func() float32 { return 1 }
	_, _, ok := b.Box()
	assert.False(t, ok)
}

func TestBoardHiDPIUsesDevicePixels(t *testing.T) {
	b := scaledBoard(t, 50, 40, 2)
	ctrl := draw.Bind(b, draw.DefaultBrush().WithWidth(4))
	defer ctrl.Close()

	w, h, ok := b.Box()
	require.True(t, ok)
	assert.Equal(t, 100, w)
	assert.Equal(t, 80, h)

	cv, err := b.Canvas()
	require.NoError(t, err)
	assert.Equal(t, 100, cv.Width())
	assert.Equal(t, 80, cv.Height())

	press(b, 5, 20)
	drag(b, 45, 20)
	release(b, 45, 20)

	// The stroke lands at y=40 in buffer pixels, not y=20.
	_, _, _, a := cv.Image().At(50, 40).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	_, _, _, a = cv.Image().At(50, 20).RGBA()
	assert.Zero(t, a)
}

func TestBoardDrawsThroughController(t *testing.T) {
	b := mountedBoard(t, 120, 80)
	changes := 0
	b.OnChange = func() { changes++ }

	ctrl := draw.Bind(b, draw.DefaultBrush().WithWidth(6))
	defer ctrl.Close()

	cv, err := b.Canvas()
	require.NoError(t, err)
	assert.Equal(t, 120, cv.Width())
	assert.Equal(t, 80, cv.Height())

	press(b, 10, 40)
	drag(b, 100, 40)
	release(b, 100, 40)

	assert.Equal(t, 1, ctrl.Segments())
	assert.False(t, ctrl.Drawing())
	assert.Positive(t, changes)
	_, _, _, a := cv.Image().At(55, 40).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestBoardMouseOutEndsStroke(t *testing.T) {
	b := mountedBoard(t, 100, 100)
	ctrl := draw.Bind(b, draw.DefaultBrush())
	defer ctrl.Close()

	press(b, 10, 10)
	assert.True(t, ctrl.Drawing())
	b.MouseOut()
	assert.False(t, ctrl.Drawing())

	drag(b, 90, 90)
	assert.Zero(t, ctrl.Segments())
}

func TestBoardIgnoresSecondaryButton(t *testing.T) {
	b := mountedBoard(t, 100, 100)
	ctrl := draw.Bind(b, draw.DefaultBrush())
	defer ctrl.Close()

	b.MouseDown(&desktop.MouseEvent{Button: desktop.MouseButtonSecondary})
	assert.False(t, ctrl.Drawing())
}

func TestBoardResizeKeepsPixels(t *testing.T) {
	b := mountedBoard(t, 60, 60)
	ctrl := draw.Bind(b, draw.DefaultBrush().WithWidth(4))
	defer ctrl.Close()

	press(b, 5, 10)
	drag(b, 40, 10)
	release(b, 40, 10)

	b.Resize(fyne.NewSize(200, 150))
	cv, err := b.Canvas()
	require.NoError(t, err)
	assert.Equal(t, 200, cv.Width())
	_, _, _, a := cv.Image().At(20, 10).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	_, _, _, a = cv.Image().At(150, 120).RGBA()
	assert.Zero(t, a)
}

func TestBrushTools(t *testing.T) {
	test.NewTempApp(t)
	var applied []draw.Brush
	tools := newBrushTools(draw.DefaultBrush(), func(b draw.Brush) { applied = append(applied, b) })

	tools.selectStyle(draw.Crayon)
	tools.toggleEraser()
	assert.Equal(t, draw.ModeEraser, tools.brush.Mode())
	assert.Equal(t, "eraser · 5px · #000000", tools.status.Text)

	tools.selectColor(color.NRGBA{R: 0xff, A: 0xff})
	assert.Equal(t, draw.ModeCrayon, tools.brush.Mode(), "picking a colour leaves the eraser")

	tools.selectWidth(500)
	assert.Equal(t, draw.MaxWidth, tools.brush.Width)

	require.Len(t, applied, 4)
	assert.Equal(t, tools.brush, applied[3])
}

func TestBrushFromConfig(t *testing.T) {
	b := brushFromConfig(config.BrushConfig{Color: "#ff0000", Width: 12, Style: "crayon"})
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, b.Color)
	assert.Equal(t, 12, b.Width)
	assert.Equal(t, draw.Crayon, b.Style)

	assert.Equal(t, draw.DefaultBrush(), brushFromConfig(config.BrushConfig{Color: "nope", Style: "chalk"}))
}

func TestValidName(t *testing.T) {
	assert.ErrorIs(t, validName("   "), state.ErrEmptyName)
	assert.NoError(t, validName(" doodles "))
}
