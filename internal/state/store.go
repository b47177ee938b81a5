package state

import (
	"context"
	"sync"
)

// Store persists the wall list.
type Store interface {
	SaveWall(ctx context.Context, w Wall) error
	DeleteWall(ctx context.Context, id string) error
	// ListWalls returns walls in creation order.
	ListWalls(ctx context.Context) ([]Wall, error)
	Close() error
}

// MemoryStore keeps walls in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	walls []Wall
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveWall(_ context.Context, w Wall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.walls {
		if m.walls[i].ID == w.ID {
			m.walls[i] = w
			return nil
		}
	}
	m.walls = append(m.walls, w)
	return nil
}

func (m *MemoryStore) DeleteWall(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.walls {
		if m.walls[i].ID == id {
			m.walls = append(m.walls[:i], m.walls[i+1:]...)
			return nil
		}
	}
	return ErrWallNotFound
}

func (m *MemoryStore) ListWalls(_ context.Context) ([]Wall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Wall, len(m.walls))
	copy(out, m.walls)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
