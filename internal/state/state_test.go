package state

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewWallID(now)

	assert.True(t, strings.HasPrefix(id, "wall_1700000000123_"), id)
	assert.Len(t, strings.TrimPrefix(id, "wall_1700000000123_"), 7)
	assert.True(t, ValidID(id))
	assert.NotEqual(t, id, NewWallID(now), "suffix is random")
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("wall_1_abc-DEF"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("wall/1"))
	assert.False(t, ValidID("wall 1"))
}

func TestParseWallRoute(t *testing.T) {
	tests := []struct {
		route  string
		want   string
		wantOK bool
	}{
		{"#/wall/wall_1_abc", "wall_1_abc", true},
		{"/wall/abc-DEF", "abc-DEF", true},
		{WallRoute("wall_9_zzz"), "wall_9_zzz", true},
		{"#/wall/abc/extra", "abc", true},
		{"", "", false},
		{"#", "", false},
		{"#/wall/", "", false},
		{"#/walls/abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			got, ok := ParseWallRoute(tt.route)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSession(t *testing.T) {
	var s Session
	_, ok := s.User()
	assert.False(t, ok)

	_, err := s.Login("   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	u, err := s.Login(" Tina ")
	require.NoError(t, err)
	assert.Equal(t, "Tina", u.Name)
	assert.Equal(t, "https://api.multiavatar.com/Tina.svg", u.Avatar)
	assert.True(t, s.SignedIn())

	s.Logout()
	assert.False(t, s.SignedIn())
}

func stores(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"sqlite": func() Store {
			st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "walls.db"))
			require.NoError(t, err)
			return st
		},
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st := open()
			defer st.Close()

			base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			a := Wall{ID: "wall_b", Name: "second id, first saved", CreatedAt: base}
			b := Wall{ID: "wall_a", Name: "B", CreatedAt: base.Add(time.Second)}
			require.NoError(t, st.SaveWall(ctx, a))
			require.NoError(t, st.SaveWall(ctx, b))

			a.Name = "renamed"
			require.NoError(t, st.SaveWall(ctx, a))

			list, err := st.ListWalls(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "wall_b", list[0].ID, "creation order, not id order")
			assert.Equal(t, "renamed", list[0].Name)
			assert.True(t, list[1].CreatedAt.Equal(b.CreatedAt))

			require.NoError(t, st.DeleteWall(ctx, "wall_b"))
			assert.ErrorIs(t, st.DeleteWall(ctx, "wall_b"), ErrWallNotFound)

			list, err = st.ListWalls(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "walls.db")

	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, st.SaveWall(ctx, Wall{ID: "wall_1_aaaaaaa", Name: "kept", CreatedAt: time.Now()}))
	require.NoError(t, st.Close())

	st, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer st.Close()
	list, err := st.ListWalls(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Name)
}

func TestWallsRequireSignIn(t *testing.T) {
	ctx := context.Background()
	walls, err := NewWalls(ctx, NewMemoryStore(), &Session{}, nil)
	require.NoError(t, err)

	_, err = walls.Create(ctx, "doodles")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Empty(t, walls.List())
}

func TestWallsCreateGetList(t *testing.T) {
	ctx := context.Background()
	session := &Session{}
	_, err := session.Login("Tina")
	require.NoError(t, err)

	store := NewMemoryStore()
	walls, err := NewWalls(ctx, store, session, nil)
	require.NoError(t, err)

	_, err = walls.Create(ctx, "  \t ")
	assert.ErrorIs(t, err, ErrEmptyName)

	first, err := walls.Create(ctx, "  Cats  ")
	require.NoError(t, err)
	assert.Equal(t, "Cats", first.Name)
	assert.True(t, ValidID(first.ID))

	second, err := walls.Create(ctx, "Dogs")
	require.NoError(t, err)

	got, err := walls.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	list := walls.List()
	require.Len(t, list, 2)
	assert.Equal(t, []string{first.ID, second.ID}, []string{list[0].ID, list[1].ID})

	_, err = walls.Get("wall_0_missing")
	assert.True(t, errors.Is(err, ErrWallNotFound))
	assert.Equal(t, UnnamedWall, walls.Name("wall_0_missing"))
	assert.Equal(t, "Dogs", walls.Name(second.ID))

	// A fresh registry over the same store sees both walls.
	reloaded, err := NewWalls(ctx, store, session, nil)
	require.NoError(t, err)
	assert.Equal(t, list, reloaded.List())
}

func TestWallsRemove(t *testing.T) {
	ctx := context.Background()
	session := &Session{}
	_, _ = session.Login("Tina")
	walls, err := NewWalls(ctx, NewMemoryStore(), session, nil)
	require.NoError(t, err)

	a, _ := walls.Create(ctx, "a")
	b, _ := walls.Create(ctx, "b")
	c, _ := walls.Create(ctx, "c")

	require.NoError(t, walls.Remove(ctx, b.ID))
	assert.ErrorIs(t, walls.Remove(ctx, b.ID), ErrWallNotFound)

	got, err := walls.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.Equal(t, []Wall{a, c}, walls.List())
}
