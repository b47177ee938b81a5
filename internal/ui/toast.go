package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const toastDuration = 3 * time.Second

// showToast pops msg near the bottom of win and hides it after d.
func showToast(win fyne.Window, msg string, d time.Duration) {
	label := widget.NewLabel(msg)
	label.Wrapping = fyne.TextWrapWord
	content := container.NewPadded(label)

	pop := widget.NewPopUp(content, win.Canvas())
	size := win.Canvas().Size()
	min := content.MinSize()
	width := fyne.Min(size.Width-32, fyne.Max(min.Width, 240))
	pop.Resize(fyne.NewSize(width, min.Height))
	pop.ShowAtPosition(fyne.NewPos((size.Width-width)/2, size.Height-min.Height-48))

	time.AfterFunc(d, func() {
		fyne.Do(pop.Hide)
	})
}
