package state

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Walls is the registry of named walls, backed by a Store.
type Walls struct {
	store   Store
	session *Session
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	walls []Wall
	byID  map[string]int
}

// NewWalls loads the persisted wall list. Creating walls requires a user
// signed in on session.
func NewWalls(ctx context.Context, store Store, session *Session, logger *slog.Logger) (*Walls, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Walls{
		store:   store,
		session: session,
		logger:  logger,
		now:     time.Now,
		byID:    make(map[string]int),
	}
	list, err := store.ListWalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("load walls: %w", err)
	}
	for _, wall := range list {
		w.byID[wall.ID] = len(w.walls)
		w.walls = append(w.walls, wall)
	}
	logger.Debug("walls loaded", "count", len(list))
	return w, nil
}

// Create adds a wall named name. The name is trimmed and must not be empty.
func (w *Walls) Create(ctx context.Context, name string) (Wall, error) {
	if !w.session.SignedIn() {
		return Wall{}, ErrNotSignedIn
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Wall{}, ErrEmptyName
	}

	now := w.now()
	wall := Wall{ID: NewWallID(now), Name: name, CreatedAt: now}
	if err := w.store.SaveWall(ctx, wall); err != nil {
		return Wall{}, err
	}

	w.mu.Lock()
	w.byID[wall.ID] = len(w.walls)
	w.walls = append(w.walls, wall)
	w.mu.Unlock()

	w.logger.Info("wall created", "wall", wall.ID, "name", wall.Name)
	return wall, nil
}

// Get returns the wall with id.
func (w *Walls) Get(id string) (Wall, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	i, ok := w.byID[id]
	if !ok {
		return Wall{}, fmt.Errorf("%w: %s", ErrWallNotFound, id)
	}
	return w.walls[i], nil
}

// Name returns the wall's name, or UnnamedWall when id is unknown.
func (w *Walls) Name(id string) string {
	wall, err := w.Get(id)
	if err != nil {
		return UnnamedWall
	}
	return wall.Name
}

// List returns every wall in creation order.
func (w *Walls) List() []Wall {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Wall, len(w.walls))
	copy(out, w.walls)
	return out
}

// Remove deletes a wall.
func (w *Walls) Remove(ctx context.Context, id string) error {
	if err := w.store.DeleteWall(ctx, id); err != nil {
		return err
	}

	w.mu.Lock()
	if i, ok := w.byID[id]; ok {
		w.walls = append(w.walls[:i], w.walls[i+1:]...)
		delete(w.byID, id)
		for j := i; j < len(w.walls); j++ {
			w.byID[w.walls[j].ID] = j
		}
	}
	w.mu.Unlock()

	w.logger.Info("wall removed", "wall", id)
	return nil
}
