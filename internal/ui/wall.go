package ui

import (
	"context"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"LiveDraws/internal/draw"
	"LiveDraws/internal/export"
	lnet "LiveDraws/internal/net"
	"LiveDraws/internal/prompt"
	"LiveDraws/internal/state"
)

// wallPage is one open wall: a board, its controller and the toolbar.
type wallPage struct {
	app    *App
	wall   state.Wall
	board  *Board
	ctrl   *draw.Controller
	tools  *brushTools
	logger *slog.Logger
}

func newWallPage(a *App, wall state.Wall) *wallPage {
	p := &wallPage{
		app:    a,
		wall:   wall,
		board:  NewBoard(),
		logger: a.logger.With("wall", wall.ID),
	}
	p.ctrl = draw.Bind(p.board, a.brush, draw.WithLogger(p.logger))
	p.tools = newBrushTools(a.brush, p.ctrl.SetBrush)

	if a.share != nil {
		a.share.Publish(wall.ID, wall.Name, p.ctrl)
		p.board.OnChange = func() { a.share.Notify(wall.ID) }
	}
	return p
}

func (p *wallPage) content() fyne.CanvasObject {
	toolbar := newToolbar(p.app.win, p.tools, wallActions{
		Home:    p.app.showHome,
		Clear:   p.ctrl.Clear,
		SavePNG: func() { p.save("PNG", export.PNG) },
		SavePDF: func() { p.save("PDF", export.PDF) },
		Share:   p.shareLink,
		Inspire: p.inspire,
	})
	title := widget.NewLabelWithStyle(p.wall.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	return container.NewBorder(container.NewVBox(title, toolbar), nil, nil, nil, p.board)
}

// close detaches the controller and withdraws the wall from sharing. The
// pixels are dropped with the board.
func (p *wallPage) close() {
	p.ctrl.Close()
	if p.app.share != nil {
		p.app.share.Unpublish(p.wall.ID)
	}
	p.app.brush = p.tools.brush
}

type saveFunc func(ctx context.Context, dir string, src draw.Exporter) (string, error)

func (p *wallPage) save(kind string, fn saveFunc) {
	path, err := fn(context.Background(), p.app.cfg.App.ExportDir, p.ctrl)
	if err != nil {
		p.logger.Error("export failed", "format", kind, "error", err)
		dialog.ShowError(fmt.Errorf("export %s: %w", kind, err), p.app.win)
		return
	}
	p.logger.Info("wall exported", "format", kind, "path", path)
	showToast(p.app.win, "Saved "+path, toastDuration)
}

func (p *wallPage) shareLink() {
	if p.app.share == nil || p.app.shareHost == "" {
		showToast(p.app.win, "Failed to copy link", toastDuration)
		return
	}
	link := lnet.ShareLink(p.app.shareHost, p.app.sharePort, p.wall.ID)
	p.app.win.Clipboard().SetContent(link)
	p.logger.Info("share link copied", "link", link)
	showToast(p.app.win, "Link copied: "+link, toastDuration)
}

// inspire asks for a drawing idea off the UI goroutine and shows the answer
// as a toast.
func (p *wallPage) inspire() {
	s := p.app.suggester
	if s == nil {
		showToast(p.app.win, prompt.Message("", prompt.ErrNotConfigured), toastDuration)
		return
	}
	win := p.app.win
	go func() {
		idea, err := s.Suggest(context.Background())
		msg := prompt.Message(idea, err)
		fyne.Do(func() { showToast(win, msg, toastDuration) })
	}()
}
