package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"image/png"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"LiveDraws/internal/draw"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	defaultFPS = 10
	pngSuffix  = ".png"
)

// ShareServer serves read-only views of published walls: an HTML page, a PNG
// snapshot and a websocket that pushes a fresh PNG frame whenever the wall
// changes. Viewers cannot draw.
type ShareServer struct {
	addr     string
	maxFPS   int
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	walls map[string]*sharedWall

	httpSrv   *http.Server
	boundAddr string
	ready     chan struct{}
}

type sharedWall struct {
	id      string
	name    string
	src     draw.Exporter
	limiter *rate.Limiter
	dirty   chan struct{}
	cancel  context.CancelFunc

	mu      sync.Mutex
	closed  bool
	viewers map[string]*viewer
}

// WallInfo is one entry of the GET /walls listing.
type WallInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type viewer struct {
	id        string
	ws        *websocket.Conn
	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (v *viewer) close() {
	v.closeOnce.Do(func() { close(v.done) })
}

// offer queues frame, replacing one the viewer has not picked up yet.
func (v *viewer) offer(frame []byte) {
	select {
	case v.frames <- frame:
		return
	default:
	}
	select {
	case <-v.frames:
	default:
	}
	select {
	case v.frames <- frame:
	default:
	}
}

// NewShareServer creates a server that will listen on addr. maxFPS caps the
// frames pushed per wall per second.
func NewShareServer(addr string, maxFPS int, logger *slog.Logger) *ShareServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if maxFPS <= 0 {
		maxFPS = defaultFPS
	}
	return &ShareServer{
		addr:   addr,
		maxFPS: maxFPS,
		logger: logger,
		walls:  make(map[string]*sharedWall),
		ready:  make(chan struct{}),
	}
}

// Publish makes a wall visible to viewers. Publishing an id again replaces
// its source and disconnects existing viewers.
func (s *ShareServer) Publish(id, name string, src draw.Exporter) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &sharedWall{
		id:      id,
		name:    name,
		src:     src,
		limiter: rate.NewLimiter(rate.Limit(s.maxFPS), 1),
		dirty:   make(chan struct{}, 1),
		cancel:  cancel,
		viewers: make(map[string]*viewer),
	}

	s.mu.Lock()
	old := s.walls[id]
	s.walls[id] = w
	s.mu.Unlock()

	if old != nil {
		old.stop()
	}
	go s.pump(ctx, w)
	s.logger.Info("wall published", "wall", id)
}

// Unpublish withdraws a wall and disconnects its viewers.
func (s *ShareServer) Unpublish(id string) {
	s.mu.Lock()
	w := s.walls[id]
	delete(s.walls, id)
	s.mu.Unlock()

	if w != nil {
		w.stop()
		s.logger.Info("wall unpublished", "wall", id)
	}
}

// Published lists the ids currently shared, sorted.
func (s *ShareServer) Published() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.walls))
	for id := range s.walls {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Listing describes the walls currently shared, sorted by id.
func (s *ShareServer) Listing() []WallInfo {
	s.mu.RLock()
	list := make([]WallInfo, 0, len(s.walls))
	for _, w := range s.walls {
		list = append(list, WallInfo{ID: w.id, Name: w.name})
	}
	s.mu.RUnlock()
	slices.SortFunc(list, func(a, b WallInfo) int { return strings.Compare(a.ID, b.ID) })
	return list
}

// Notify tells viewers of id that the wall changed. It never blocks; bursts
// of changes collapse into one frame.
func (s *ShareServer) Notify(id string) {
	s.mu.RLock()
	w := s.walls[id]
	s.mu.RUnlock()
	if w == nil {
		return
	}
	select {
	case w.dirty <- struct{}{}:
	default:
	}
}

// Viewers reports how many live viewers a wall has.
func (s *ShareServer) Viewers(id string) int {
	w := s.wall(id)
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.viewers)
}

func (s *ShareServer) wall(id string) *sharedWall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.walls[id]
}

// addViewer registers v unless the wall has already been stopped.
func (w *sharedWall) addViewer(v *viewer) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	w.viewers[v.id] = v
	return true
}

func (w *sharedWall) stop() {
	w.cancel()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for id, v := range w.viewers {
		v.close()
		delete(w.viewers, id)
	}
}

func (w *sharedWall) frame() ([]byte, error) {
	img, err := w.src.Flatten()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// pump renders one frame per change, no faster than the wall's limiter, and
// hands it to every viewer.
func (s *ShareServer) pump(ctx context.Context, w *sharedWall) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.dirty:
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}

		w.mu.Lock()
		n := len(w.viewers)
		w.mu.Unlock()
		if n == 0 {
			continue
		}

		frame, err := w.frame()
		if err != nil {
			s.logger.Debug("skip frame", "wall", w.id, "error", err)
			continue
		}
		w.mu.Lock()
		for _, v := range w.viewers {
			v.offer(frame)
		}
		w.mu.Unlock()
	}
}

// Handler returns the HTTP routes of the share server.
func (s *ShareServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /walls", s.handleList)
	mux.HandleFunc("GET /walls/{id}", s.handleWall)
	mux.HandleFunc("GET /walls/{id}/live", s.handleLive)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Start listens and serves until ctx is cancelled.
func (s *ShareServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("share listen: %w", err)
	}
	s.mu.Lock()
	s.boundAddr = listener.Addr().String()
	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	srv := s.httpSrv
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("share server started", "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("share serve: %w", err)
	}
	return nil
}

// Stop disconnects every viewer and shuts the HTTP server down.
func (s *ShareServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	walls := s.walls
	s.walls = make(map[string]*sharedWall)
	srv := s.httpSrv
	s.mu.Unlock()

	for _, w := range walls {
		w.stop()
	}
	if srv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Ready is closed once Start has bound its listener.
func (s *ShareServer) Ready() <-chan struct{} { return s.ready }

// BoundAddr returns the address Start bound to.
func (s *ShareServer) BoundAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundAddr
}

func (s *ShareServer) handleList(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(s.Listing()); err != nil {
		s.logger.Debug("write wall listing", "error", err)
	}
}

func (s *ShareServer) handleWall(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if strings.HasSuffix(id, pngSuffix) {
		s.handleSnapshot(w, strings.TrimSuffix(id, pngSuffix))
		return
	}
	wall := s.wall(id)
	if wall == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viewerPage.Execute(w, wall); err != nil {
		s.logger.Warn("render viewer page", "wall", id, "error", err)
	}
}

func (s *ShareServer) handleSnapshot(w http.ResponseWriter, id string) {
	wall := s.wall(id)
	if wall == nil {
		http.Error(w, "wall not shared", http.StatusNotFound)
		return
	}
	frame, err := wall.frame()
	if err != nil {
		s.logger.Debug("snapshot unavailable", "wall", id, "error", err)
		http.Error(w, "wall not available", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(frame); err != nil {
		s.logger.Debug("write snapshot", "wall", id, "error", err)
	}
}

func (s *ShareServer) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	wall := s.wall(id)
	if wall == nil {
		http.Error(w, "wall not shared", http.StatusNotFound)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	v := &viewer{
		id:     ulid.Make().String(),
		ws:     ws,
		frames: make(chan []byte, 1),
		done:   make(chan struct{}),
	}
	if frame, err := wall.frame(); err == nil {
		v.offer(frame)
	}

	if !wall.addViewer(v) {
		// Unpublished between lookup and registration.
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "wall closed"))
		ws.Close()
		return
	}
	s.logger.Info("viewer connected", "wall", id, "viewer", v.id, "remote", r.RemoteAddr)

	go s.writeLoop(v)
	s.readLoop(v)

	wall.mu.Lock()
	delete(wall.viewers, v.id)
	wall.mu.Unlock()
	v.close()
	s.logger.Info("viewer disconnected", "wall", id, "viewer", v.id)
}

// readLoop drains control frames so pings and closes are processed. Viewers
// have nothing to say; any data message is ignored.
func (s *ShareServer) readLoop(v *viewer) {
	v.ws.SetReadLimit(512)
	v.ws.SetReadDeadline(time.Now().Add(pongWait))
	v.ws.SetPongHandler(func(string) error {
		return v.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *ShareServer) writeLoop(v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.ws.Close()
	}()
	for {
		select {
		case <-v.done:
			v.ws.SetWriteDeadline(time.Now().Add(writeWait))
			v.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "wall closed"))
			return
		case frame := <-v.frames:
			v.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				s.logger.Debug("viewer write failed", "viewer", v.id, "error", err)
				return
			}
		case <-ticker.C:
			v.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var viewerPage = template.Must(template.New("viewer").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}} · Live Draws</title>
<style>body{margin:0;background:#f3f4f6;font-family:monospace}header{padding:12px;background:#000;color:#fff;font-weight:bold}img{display:block;margin:16px auto;max-width:95vw;border:2px solid #000;background:#fff}</style>
</head>
<body>
<header>Live Draws · {{.Name}}</header>
<img id="wall" src="/walls/{{.ID}}.png" alt="{{.Name}}">
<script>
const img = document.getElementById("wall");
const proto = location.protocol === "https:" ? "wss:" : "ws:";
const ws = new WebSocket(proto + "//" + location.host + "/walls/{{.ID}}/live");
ws.binaryType = "blob";
ws.onmessage = (ev) => {
  const url = URL.createObjectURL(ev.data);
  const prev = img.src;
  img.src = url;
  if (prev.startsWith("blob:")) URL.revokeObjectURL(prev);
};
</script>
</body>
</html>
`))

// ID and Name feed the viewer page.
func (w *sharedWall) ID() string   { return w.id }
func (w *sharedWall) Name() string { return w.name }
