package draw

import (
	"image"
	"math"
	"sync"
)

// Crayon texture parameters.
const (
	crayonCopies = 5
	crayonAlpha  = 0.3
	crayonJitter = 0.4 // jitter amplitude as a fraction of the line width
)

type strokeState int

const (
	idle strokeState = iota
	drawing
)

func (s strokeState) String() string {
	if s == drawing {
		return "drawing"
	}
	return "idle"
}

// Controller turns surface events into rendered strokes.
//
// It is an Idle/Drawing state machine: pointer-down starts a stroke,
// every pointer-move while drawing renders one segment from the last point
// with the brush current at that moment, pointer-up or pointer-leave ends
// it. Only one stroke is active at a time; events from other pointers are
// ignored until the owning pointer lets go.
//
// Events normally arrive on one goroutine. The mutex is there so readers
// such as the share server can take snapshots from their own goroutines.
type Controller struct {
	surface Surface
	opts    options

	mu       sync.Mutex
	brush    Brush
	state    strokeState
	pointer  int
	last     Point
	hasLast  bool
	segments int

	unsubscribe func()
}

// Bind attaches a controller to s, sizes the buffer to the surface and
// starts listening for events. Call Close to detach.
func Bind(s Surface, b Brush, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Controller{surface: s, opts: o, brush: b}
	if s == nil {
		o.logger.Debug("bind without surface")
		return c
	}
	c.Resize()
	c.unsubscribe = s.Subscribe(c.Handle)
	return c
}

// Close removes the event listener and drops any active stroke. It is safe
// to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.endLocked()
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// SetBrush replaces the brush used for every following segment, including
// the rest of a stroke already in progress.
func (c *Controller) SetBrush(b Brush) {
	c.mu.Lock()
	c.brush = b
	c.mu.Unlock()
}

// Brush returns the current brush.
func (c *Controller) Brush() Brush {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brush
}

// Drawing reports whether a stroke is active.
func (c *Controller) Drawing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == drawing
}

// Segments returns how many segments have been rendered since Bind.
func (c *Controller) Segments() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.segments
}

// Handle dispatches one surface event.
func (c *Controller) Handle(ev Event) {
	switch ev.Kind {
	case PointerDown:
		c.PointerDown(ev.Pointer, ev.Pos)
	case PointerMove:
		c.PointerMove(ev.Pointer, ev.Pos)
	case PointerUp:
		c.PointerUp(ev.Pointer)
	case PointerLeave:
		c.PointerLeave(ev.Pointer)
	case Resize:
		c.Resize()
	}
}

// PointerDown starts a stroke at p. Nothing is rendered yet.
func (c *Controller) PointerDown(pointer int, p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == drawing && pointer != c.pointer {
		c.opts.logger.Debug("ignoring second pointer", "pointer", pointer, "active", c.pointer)
		return
	}
	c.state = drawing
	c.pointer = pointer
	c.last = p
	c.hasLast = true
}

// PointerMove renders a segment from the last point to p while drawing.
func (c *Controller) PointerMove(pointer int, p Point) {
	c.mu.Lock()
	if c.state != drawing || pointer != c.pointer || !c.hasLast {
		c.mu.Unlock()
		return
	}
	from := c.last
	c.last = p

	cv, err := c.canvasLocked()
	if err != nil {
		c.mu.Unlock()
		c.opts.logger.Debug("skip segment", "error", err)
		return
	}
	if w, h, _ := c.surface.Box(); cv.Width() != w || cv.Height() != h {
		c.resizeLocked(cv, w, h)
	}
	c.renderLocked(cv, from, p)
	c.segments++
	c.mu.Unlock()

	c.surface.Invalidate()
}

// PointerUp ends the stroke owned by pointer.
func (c *Controller) PointerUp(pointer int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == drawing && pointer == c.pointer {
		c.endLocked()
	}
}

// PointerLeave ends the stroke exactly like PointerUp, so a pointer that
// exits the surface never leaves the controller stuck drawing.
func (c *Controller) PointerLeave(pointer int) {
	c.PointerUp(pointer)
}

func (c *Controller) endLocked() {
	c.state = idle
	c.hasLast = false
}

// Resize matches the buffer to the surface's on-screen box, keeping earlier
// pixels at their original coordinates. Growing pads with transparency,
// shrinking crops; nothing is ever rescaled.
func (c *Controller) Resize() {
	c.mu.Lock()
	cv, err := c.canvasLocked()
	if err != nil {
		c.mu.Unlock()
		c.opts.logger.Debug("skip resize", "error", err)
		return
	}
	w, h, _ := c.surface.Box()
	changed := cv.Width() != w || cv.Height() != h
	if changed {
		c.resizeLocked(cv, w, h)
	}
	c.mu.Unlock()

	if changed {
		c.surface.Invalidate()
	}
}

func (c *Controller) resizeLocked(cv *Canvas, w, h int) {
	old := cv.Bounds().Size()
	snapshot := cv.Snapshot()
	cv.SetSize(w, h)
	cv.Put(snapshot, image.Point{})
	c.opts.logger.Debug("canvas resized", "from", old, "to", image.Pt(w, h))
}

// Clear wipes the whole buffer to transparent. There is no undo.
func (c *Controller) Clear() {
	c.mu.Lock()
	cv, err := c.canvasLocked()
	if err != nil {
		c.mu.Unlock()
		c.opts.logger.Debug("skip clear", "error", err)
		return
	}
	cv.Clear()
	c.mu.Unlock()

	c.surface.Invalidate()
}

func (c *Controller) canvasLocked() (*Canvas, error) {
	if c.surface == nil {
		return nil, ErrSurfaceUnavailable
	}
	if _, _, ok := c.surface.Box(); !ok {
		return nil, ErrSurfaceUnavailable
	}
	cv, err := c.surface.Canvas()
	if err != nil {
		return nil, err
	}
	if cv == nil {
		return nil, ErrNoContext
	}
	return cv, nil
}

func (c *Controller) renderLocked(cv *Canvas, from, to Point) {
	b := c.brush
	w := float64(clampWidth(b.Width))
	r := c.opts.renderer

	switch b.Mode() {
	case ModeEraser:
		r.Render(cv, Segment{From: from, To: to, Width: w, Color: b.Color, Alpha: 1, Op: DestinationOut})
	case ModeCrayon:
		amp := crayonJitter * w
		width := math.Max(w/2, 1)
		for range crayonCopies {
			dx := (c.opts.rand.Float64() - 0.5) * amp
			dy := (c.opts.rand.Float64() - 0.5) * amp
			r.Render(cv, Segment{
				From:  Point{X: from.X + dx, Y: from.Y + dy},
				To:    Point{X: to.X + dx, Y: to.Y + dy},
				Width: width,
				Color: b.Color,
				Alpha: crayonAlpha,
				Op:    SourceOver,
			})
		}
	default:
		r.Render(cv, Segment{From: from, To: to, Width: w, Color: b.Color, Alpha: 1, Op: SourceOver})
	}
}
