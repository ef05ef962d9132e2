// Package store persists the harness selections in sqlite between runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("selection not found")

// Selection is the persisted value of one widget, stored as option values
// rather than pointers so it survives a restart.
type Selection struct {
	Widget    string
	Multiple  bool
	Values    []string
	UpdatedAt time.Time
}

type Store struct {
	db *sql.DB
}

// Open migrates and opens the sqlite file at path, creating its directory.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir state dir: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts the selection for sel.Widget.
func (s *Store) Save(ctx context.Context, sel Selection) error {
	values := sel.Values
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO selections (widget, multiple, option_values, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(widget) DO UPDATE SET
			multiple = excluded.multiple,
			option_values = excluded.option_values,
			updated_at = excluded.updated_at`,
		sel.Widget, sel.Multiple, string(raw), now())
	if err != nil {
		return fmt.Errorf("save selection %q: %w", sel.Widget, err)
	}
	return nil
}

// Load returns ErrNotFound when nothing was saved for widget.
func (s *Store) Load(ctx context.Context, widget string) (Selection, error) {
	var (
		sel Selection
		raw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT widget, multiple, option_values, updated_at FROM selections WHERE widget = ?`, widget,
	).Scan(&sel.Widget, &sel.Multiple, &raw, &sel.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Selection{}, ErrNotFound
	}
	if err != nil {
		return Selection{}, fmt.Errorf("load selection %q: %w", widget, err)
	}
	if err := json.Unmarshal([]byte(raw), &sel.Values); err != nil {
		return Selection{}, fmt.Errorf("decode selection %q: %w", widget, err)
	}
	return sel, nil
}

// now returns UTC time truncated to seconds (consistent with SQLite default).
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
