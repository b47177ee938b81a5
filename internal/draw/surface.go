package draw

import "errors"

var (
	// ErrSurfaceUnavailable means the surface is not attached yet.
	ErrSurfaceUnavailable = errors.New("drawing surface unavailable")
	// ErrNoContext means the surface cannot provide a raster canvas.
	ErrNoContext = errors.New("rendering context unavailable")
	// ErrExportUnavailable means no image could be produced.
	ErrExportUnavailable = errors.New("export unavailable")
)

// EventKind identifies an input event delivered by a surface.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerLeave
	Resize
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerMove:
		return "pointer-move"
	case PointerUp:
		return "pointer-up"
	case PointerLeave:
		return "pointer-leave"
	case Resize:
		return "resize"
	}
	return "unknown"
}

// Event is one input event in surface-local coordinates. Pos is unset for
// Resize.
type Event struct {
	Kind    EventKind
	Pointer int
	Pos     Point
}

// Surface is the on-screen area a Controller draws into.
type Surface interface {
	// Box reports the current on-screen size in pixels. ok is false while
	// the surface is not mounted.
	Box() (width, height int, ok bool)

	// Canvas returns the raster buffer, or ErrNoContext.
	Canvas() (*Canvas, error)

	// Subscribe registers fn for pointer and resize events, delivered in
	// order on a single goroutine. The returned func removes it.
	Subscribe(fn func(Event)) (unsubscribe func())

	// Invalidate tells the surface its pixels changed.
	Invalidate()
}
