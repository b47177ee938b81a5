package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LiveDraws/internal/draw"
)

// palette is the quick colour row shown next to the picker.
var palette = []string{"black", "red", "green", "blue", "yellow", "orange", "purple", "pink"}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.NRGBA
	OnTapped func(color.NRGBA)
}

func newColorSwatch(c color.NRGBA, tapped func(color.NRGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// brushTools owns the brush for one wall page and pushes every change to the
// controller, which picks it up on its next segment.
type brushTools struct {
	brush draw.Brush
	apply func(draw.Brush)

	status *widget.Label
	slider *widget.Slider
}

func newBrushTools(initial draw.Brush, apply func(draw.Brush)) *brushTools {
	t := &brushTools{brush: initial, apply: apply, status: widget.NewLabel("")}
	t.refresh()
	return t
}

func (t *brushTools) set(b draw.Brush) {
	t.brush = b
	if t.apply != nil {
		t.apply(b)
	}
	t.refresh()
}

func (t *brushTools) refresh() {
	t.status.SetText(describeBrush(t.brush))
}

func (t *brushTools) selectStyle(s draw.Style) { t.set(t.brush.WithStyle(s)) }
func (t *brushTools) toggleEraser() { t.set(t.brush.ToggleEraser()) }
func (t *brushTools) selectColor(c color.NRGBA) { t.set(t.brush.WithColor(c)) }
func (t *brushTools) selectWidth(w int) { t.set(t.brush.WithWidth(w)) }

func describeBrush(b draw.Brush) string {
	tool := b.Style.String()
	if b.Erasing {
		tool = "eraser"
	}
	return fmt.Sprintf("%s · %dpx · %s", tool, b.Width, draw.FormatColor(b.Color))
}

// wallActions are the non-brush toolbar buttons.
type wallActions struct {
	Home    func()
	Clear   func()
	SavePNG func()
	SavePDF func()
	Share   func()
	Inspire func()
}

func newToolbar(win fyne.Window, tools *brushTools, actions wallActions) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.HomeIcon(), actions.Home),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { tools.selectStyle(draw.Pencil) }),
		widget.NewToolbarAction(theme.ColorChromaticIcon(), func() { tools.selectStyle(draw.Crayon) }),
		widget.NewToolbarAction(theme.DeleteIcon(), tools.toggleEraser),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentClearIcon(), actions.Clear),
		widget.NewToolbarAction(theme.DownloadIcon(), actions.SavePNG),
		widget.NewToolbarAction(theme.DocumentIcon(), actions.SavePDF),
		widget.NewToolbarAction(theme.MailSendIcon(), actions.Share),
		widget.NewToolbarAction(theme.InfoIcon(), actions.Inspire),
	)

	swatches := container.NewHBox()
	for _, name := range palette {
		c, err := draw.ParseColor(name)
		if err != nil {
			continue
		}
		swatches.Add(newColorSwatch(c, tools.selectColor))
	}
	more := widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), func() {
		picker := dialog.NewColorPicker("Pick a color", "", func(c color.Color) {
			tools.selectColor(color.NRGBAModel.Convert(c).(color.NRGBA))
		}, win)
		picker.Advanced = true
		picker.Show()
	})

	widthLabel := widget.NewLabel("")
	tools.slider = widget.NewSlider(draw.MinWidth, draw.MaxWidth)
	tools.slider.Step = 1
	tools.slider.SetValue(float64(tools.brush.Width))
	widthLabel.SetText(fmt.Sprintf("%dpx", tools.brush.Width))
	tools.slider.OnChanged = func(v float64) {
		tools.selectWidth(int(v))
		widthLabel.SetText(fmt.Sprintf("%dpx", tools.brush.Width))
	}
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), tools.slider)

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		swatches,
		more,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderBox,
		widthLabel,
		layout.NewSpacer(),
		tools.status,
	)
}
