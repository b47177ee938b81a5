package ui

import (
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LiveDraws/internal/draw"
)

// mousePointer is the pointer id used for the desktop mouse.
const mousePointer = 0

// Board is the on-screen drawing surface. It owns the raster buffer, shows
// it over a white backdrop and forwards mouse and size changes to whoever
// subscribed, normally a draw.Controller.
//
// Fyne lays out in device-independent units. The buffer and every event
// position are in device pixels, so strokes stay sharp on HiDPI screens.
type Board struct {
	widget.BaseWidget

	mu        sync.Mutex
	buf       *draw.Canvas
	listeners map[int]func(draw.Event)
	nextID    int
	mounted   bool

	raster *canvas.Image

	// scale overrides the canvas scale lookup; tests set it.
	scale func() float32

	// OnChange runs after the buffer has been redrawn.
	OnChange func()
}

var _ draw.Surface = (*Board)(nil)

func NewBoard() *Board {
	b := &Board{
		buf:       draw.NewCanvas(0, 0),
		listeners: make(map[int]func(draw.Event)),
	}
	b.ExtendBaseWidget(b)
	return b
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	bg.StrokeColor = color.Black
	bg.StrokeWidth = 4

	b.mu.Lock()
	b.raster = canvas.NewImageFromImage(b.buf.Image())
	b.mounted = true
	b.mu.Unlock()
	b.raster.FillMode = canvas.ImageFillStretch
	b.raster.ScaleMode = canvas.ImageScalePixels

	return widget.NewSimpleRenderer(container.NewStack(bg, b.raster))
}

// Resize lays the widget out and tells listeners the box changed.
func (b *Board) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.emit(draw.Event{Kind: draw.Resize})
}

// pixelScale is the number of device pixels per fyne unit.
func (b *Board) pixelScale() float32 {
	if b.scale != nil {
		return b.scale()
	}
	if a := fyne.CurrentApp(); a != nil {
		if c := a.Driver().CanvasForObject(b); c != nil && c.Scale() > 0 {
			return c.Scale()
		}
	}
	return 1
}

// Box implements draw.Surface.
func (b *Board) Box() (int, int, bool) {
	b.mu.Lock()
	mounted := b.mounted
	b.mu.Unlock()
	size := b.Size()
	scale := float64(b.pixelScale())
	w := int(math.Round(float64(size.Width) * scale))
	h := int(math.Round(float64(size.Height) * scale))
	return w, h, mounted && w > 0 && h > 0
}

// Canvas implements draw.Surface.
func (b *Board) Canvas() (*draw.Canvas, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf == nil {
		return nil, draw.ErrNoContext
	}
	return b.buf, nil
}

// Subscribe implements draw.Surface.
func (b *Board) Subscribe(fn func(draw.Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Invalidate implements draw.Surface. The buffer may have been replaced by
// a resize, so the image is re-pointed before the refresh.
func (b *Board) Invalidate() {
	b.mu.Lock()
	raster := b.raster
	if raster != nil {
		raster.Image = b.buf.Image()
	}
	b.mu.Unlock()

	if raster != nil {
		raster.Refresh()
	}
	if b.OnChange != nil {
		b.OnChange()
	}
}

func (b *Board) emit(ev draw.Event) {
	b.mu.Lock()
	fns := make([]func(draw.Event), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (b *Board) toPoint(p fyne.Position) draw.Point {
	scale := float64(b.pixelScale())
	return draw.Point{X: float64(p.X) * scale, Y: float64(p.Y) * scale}
}

// MouseDown implements desktop.Mouseable.
func (b *Board) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	b.emit(draw.Event{Kind: draw.PointerDown, Pointer: mousePointer, Pos: b.toPoint(ev.Position)})
}

// MouseUp implements desktop.Mouseable.
func (b *Board) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	b.emit(draw.Event{Kind: draw.PointerUp, Pointer: mousePointer, Pos: b.toPoint(ev.Position)})
}

// MouseIn implements desktop.Hoverable.
func (b *Board) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (b *Board) MouseMoved(ev *desktop.MouseEvent) {
	b.emit(draw.Event{Kind: draw.PointerMove, Pointer: mousePointer, Pos: b.toPoint(ev.Position)})
}

// MouseOut implements desktop.Hoverable.
func (b *Board) MouseOut() {
	b.emit(draw.Event{Kind: draw.PointerLeave, Pointer: mousePointer})
}
