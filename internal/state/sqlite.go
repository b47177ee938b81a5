package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and migrates it.
// ":memory:" gives a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open wall db: %w", err)
	}
	// A single connection keeps ":memory:" databases alive between calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate wall db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS walls (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveWall(ctx context.Context, w Wall) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO walls (id, name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		w.ID, w.Name, w.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save wall %s: %w", w.ID, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteWall(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM walls WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete wall %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrWallNotFound
	}
	return nil
}

func (s *SQLiteStore) ListWalls(ctx context.Context) ([]Wall, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at FROM walls ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list walls: %w", err)
	}
	defer rows.Close()

	var walls []Wall
	for rows.Next() {
		var (
			w       Wall
			created string
		)
		if err := rows.Scan(&w.ID, &w.Name, &created); err != nil {
			return nil, fmt.Errorf("scan wall: %w", err)
		}
		w.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", w.ID, err)
		}
		walls = append(walls, w)
	}
	return walls, rows.Err()
}
