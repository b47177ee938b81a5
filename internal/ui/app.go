package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LiveDraws/internal/config"
	"LiveDraws/internal/draw"
	lnet "LiveDraws/internal/net"
	"LiveDraws/internal/prompt"
	"LiveDraws/internal/state"
)

// Options wires the window to the rest of the application.
type Options struct {
	Config    *config.Config
	Walls     *state.Walls
	Session   *state.Session
	Share     *lnet.ShareServer // nil disables share links
	ShareHost string
	SharePort int
	Suggester prompt.Suggester
	Logger    *slog.Logger
}

// App is the desktop window: a home screen listing walls and one open wall
// at a time.
type App struct {
	cfg       *config.Config
	walls     *state.Walls
	session   *state.Session
	share     *lnet.ShareServer
	shareHost string
	sharePort int
	suggester prompt.Suggester
	logger    *slog.Logger

	fyneApp fyne.App
	win     fyne.Window
	page    *wallPage
	brush   draw.Brush
}

func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{
		cfg:       opts.Config,
		walls:     opts.Walls,
		session:   opts.Session,
		share:     opts.Share,
		shareHost: opts.ShareHost,
		sharePort: opts.SharePort,
		suggester: opts.Suggester,
		logger:    logger,
		brush:     brushFromConfig(opts.Config.Brush),
	}
	a.fyneApp = app.NewWithID("io.livedraws.app")
	a.win = a.fyneApp.NewWindow(opts.Config.App.Title)
	a.win.Resize(fyne.NewSize(float32(opts.Config.App.Width), float32(opts.Config.App.Height)))
	a.win.SetOnClosed(a.closePage)
	return a
}

// brushFromConfig builds the starting brush. Config is validated on load,
// so parse failures fall back to the defaults.
func brushFromConfig(cfg config.BrushConfig) draw.Brush {
	b := draw.DefaultBrush()
	if c, err := draw.ParseColor(cfg.Color); err == nil {
		b = b.WithColor(c)
	}
	if s, err := draw.ParseStyle(cfg.Style); err == nil {
		b = b.WithStyle(s)
	}
	if cfg.Width > 0 {
		b = b.WithWidth(cfg.Width)
	}
	return b
}

// Run shows the window and blocks until it is closed. route may name a wall
// as "#/wall/<id>" to open it directly.
func (a *App) Run(route string) {
	if id, ok := state.ParseWallRoute(route); ok {
		a.openWall(id)
	} else {
		a.showHome()
	}
	a.win.ShowAndRun()
}

func (a *App) closePage() {
	if a.page != nil {
		a.page.close()
		a.page = nil
	}
}

func (a *App) showHome() {
	a.closePage()
	a.win.SetContent(a.homeContent())
}

// openWall shows the wall page for id. Unknown ids still open, under the
// fallback name, so a pasted link is never a dead end.
func (a *App) openWall(id string) {
	if !state.ValidID(id) {
		a.logger.Warn("ignoring malformed wall id", "wall", id)
		a.showHome()
		return
	}
	wall, err := a.walls.Get(id)
	if err != nil {
		wall = state.Wall{ID: id, Name: a.walls.Name(id)}
	}

	a.closePage()
	a.page = newWallPage(a, wall)
	a.win.SetContent(a.page.content())
	a.logger.Info("wall opened", "wall", id, "route", state.WallRoute(id))
}

func (a *App) homeContent() fyne.CanvasObject {
	header := widget.NewLabelWithStyle(a.cfg.App.Title, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	var account fyne.CanvasObject
	if u, ok := a.session.User(); ok {
		account = container.NewHBox(
			widget.NewIcon(theme.AccountIcon()),
			widget.NewLabel(u.Name),
			widget.NewButtonWithIcon("Sign out", theme.LogoutIcon(), func() {
				a.session.Logout()
				a.logger.Info("signed out", "user", u.Name)
				a.showHome()
			}),
		)
	} else {
		account = widget.NewButtonWithIcon("Sign in", theme.LoginIcon(), a.showLogin)
	}

	create := widget.NewButtonWithIcon("New wall", theme.ContentAddIcon(), a.showCreateWall)
	if !a.session.SignedIn() {
		create.Disable()
	}

	walls := a.walls.List()
	list := widget.NewList(
		func() int { return len(walls) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(walls[i].Name)
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		a.openWall(walls[i].ID)
	}

	var body fyne.CanvasObject = list
	if len(walls) == 0 {
		body = container.NewCenter(widget.NewLabel("No walls yet"))
	}

	top := container.NewVBox(
		header,
		container.NewHBox(account, layout.NewSpacer(), create),
		widget.NewSeparator(),
	)
	return container.NewBorder(top, nil, nil, nil, body)
}

func (a *App) showLogin() {
	name := widget.NewEntry()
	name.SetPlaceHolder("Your name")
	name.Validator = validName
	dialog.ShowForm("Sign in", "Sign in", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", name)},
		func(ok bool) {
			if !ok {
				return
			}
			u, err := a.session.Login(name.Text)
			if err != nil {
				dialog.ShowError(err, a.win)
				return
			}
			a.logger.Info("signed in", "user", u.Name)
			a.showHome()
		}, a.win)
}

func (a *App) showCreateWall() {
	name := widget.NewEntry()
	name.SetPlaceHolder("e.g. Friday doodles")
	name.Validator = validName
	dialog.ShowForm("Name your wall", "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", name)},
		func(ok bool) {
			if !ok {
				return
			}
			wall, err := a.walls.Create(context.Background(), name.Text)
			if err != nil {
				if errors.Is(err, state.ErrNotSignedIn) {
					a.showLogin()
					return
				}
				dialog.ShowError(err, a.win)
				return
			}
			a.openWall(wall.ID)
		}, a.win)
}

// validName keeps the dialogs' confirm button disabled for blank names.
func validName(s string) error {
	if strings.TrimSpace(s) == "" {
		return state.ErrEmptyName
	}
	return nil
}
