package draw

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Style selects the rendering rule applied to non-eraser strokes.
type Style int

const (
	Pencil Style = iota
	Crayon
)

func (s Style) String() string {
	switch s {
	case Crayon:
		return "crayon"
	default:
		return "pencil"
	}
}

// ParseStyle maps a config value to a Style. Unknown names are an error.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pencil":
		return Pencil, nil
	case "crayon":
		return Crayon, nil
	}
	return Pencil, fmt.Errorf("unknown brush style %q", s)
}

// Mode is the rule actually used to render a segment.
type Mode int

const (
	ModePencil Mode = iota
	ModeCrayon
	ModeEraser
)

// Line width bounds offered by the toolbar.
const (
	MinWidth = 1
	MaxWidth = 100
)

// Brush is the host-owned brush configuration. It is a plain value: the
// controller reads the latest one for every segment and never changes it.
//
// Erasing and Style are independent. Eraser wins while it is on, but turning
// it off again brings back whatever style was selected before.
type Brush struct {
	Color   color.NRGBA
	Width   int
	Erasing bool
	Style   Style
}

// DefaultBrush is black, 5px, pencil.
func DefaultBrush() Brush {
	return Brush{
		Color: color.NRGBA{A: 0xff},
		Width: 5,
		Style: Pencil,
	}
}

// Mode resolves which rule renders the next segment.
func (b Brush) Mode() Mode {
	if b.Erasing {
		return ModeEraser
	}
	if b.Style == Crayon {
		return ModeCrayon
	}
	return ModePencil
}

// WithColor picks a colour. Picking a colour leaves the eraser.
func (b Brush) WithColor(c color.NRGBA) Brush {
	b.Color = c
	b.Erasing = false
	return b
}

// WithWidth sets the line width, clamped to [MinWidth, MaxWidth].
func (b Brush) WithWidth(w int) Brush {
	b.Width = clampWidth(w)
	return b
}

// WithStyle selects a brush style and leaves the eraser.
func (b Brush) WithStyle(s Style) Brush {
	b.Style = s
	b.Erasing = false
	return b
}

// WithEraser turns the eraser on or off without touching the style.
func (b Brush) WithEraser(on bool) Brush {
	b.Erasing = on
	return b
}

// ToggleEraser flips the eraser flag.
func (b Brush) ToggleEraser() Brush {
	return b.WithEraser(!b.Erasing)
}

func clampWidth(w int) int {
	if w < MinWidth {
		return MinWidth
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}

var namedColors = map[string]color.NRGBA{
	"black":  {A: 0xff},
	"white":  {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"red":    {R: 0xff, A: 0xff},
	"green":  {G: 0xff, A: 0xff},
	"blue":   {B: 0xff, A: 0xff},
	"yellow": {R: 0xff, G: 0xff, A: 0xff},
	"orange": {R: 0xff, G: 0xa5, A: 0xff},
	"purple": {R: 0x80, B: 0x80, A: 0xff},
	"pink":   {R: 0xff, G: 0xc0, B: 0xcb, A: 0xff},
	"gray":   {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
}

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa or one of the palette names.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// FormatColor renders c as #rrggbb, or #rrggbbaa when it is not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
