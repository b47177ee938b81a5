package draw

import (
	"log/slog"
	"math/rand/v2"
)

// Renderer receives every segment the controller produces and is
// responsible for putting it on the canvas.
type Renderer interface {
	Render(c *Canvas, s Segment)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(c *Canvas, s Segment)

func (f RendererFunc) Render(c *Canvas, s Segment) { f(c, s) }

// RasterRenderer strokes segments straight into the canvas.
var RasterRenderer Renderer = RendererFunc(func(c *Canvas, s Segment) { c.Stroke(s) })

// RandomSource is the uniform [0,1) generator behind crayon jitter.
type RandomSource interface {
	Float64() float64
}

// Option configures a Controller at Bind time.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	rand     RandomSource
	renderer Renderer
}

func defaultOptions() options {
	return options{
		logger:   slog.New(slog.DiscardHandler),
		rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		renderer: RasterRenderer,
	}
}

// WithLogger sets the logger. By default the controller is silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRand injects the jitter source, e.g. a seeded *rand.Rand in tests.
func WithRand(r RandomSource) Option {
	return func(o *options) {
		if r != nil {
			o.rand = r
		}
	}
}

// WithRenderer replaces the segment renderer.
func WithRenderer(r Renderer) Option {
	return func(o *options) {
		if r != nil {
			o.renderer = r
		}
	}
}
