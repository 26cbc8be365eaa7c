package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"ratemovie/proj/internal/storage"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		email      TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		password   TEXT NOT NULL,
		photo_path TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS watched_movies (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL REFERENCES users (id),
		movie_id     INTEGER NOT NULL,
		title        TEXT NOT NULL,
		poster_path  TEXT,
		overview     TEXT,
		release_date TEXT,
		rating       REAL,
		user_rating  INTEGER,
		watched_date INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER) * 1000000000),
		UNIQUE (user_id, movie_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watched_movies_user_date ON watched_movies (user_id, watched_date DESC)`,
}

type Storage struct {
	Conn    *sql.DB
	users   *UserModel
	watched *WatchedModel
}

// New opens (creating if missing) the database file at path. The schema is
// not touched until Migrate.
func New(ctx context.Context, path string, busyTimeout time.Duration) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := fmt.Sprintf(
		"%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cleanPath, busyTimeout.Milliseconds(),
	)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Storage{
		Conn:    conn,
		users:   &UserModel{DB: conn},
		watched: &WatchedModel{DB: conn},
	}, nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.Conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

func (s *Storage) Users() storage.UserModel {
	return s.users
}

func (s *Storage) Watched() storage.WatchedModel {
	return s.watched
}

func (s *Storage) Close() error {
	if s == nil || s.Conn == nil {
		return nil
	}
	return s.Conn.Close()
}

// mapError turns constraint violations into storage sentinels and keeps the
// driver error in the chain for diagnostics.
func mapError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %w", storage.ErrConflict, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %w", storage.ErrReference, err)
	case sqlite3.SQLITE_CONSTRAINT:
		message := strings.ToLower(err.Error())
		switch {
		case strings.Contains(message, "unique constraint failed"):
			return fmt.Errorf("%w: %w", storage.ErrConflict, err)
		case strings.Contains(message, "foreign key constraint failed"):
			return fmt.Errorf("%w: %w", storage.ErrReference, err)
		}
	}
	return err
}

// watched_date is stored as Unix nanoseconds.
func toNanos(value time.Time) int64 {
	return value.UTC().UnixNano()
}

func fromNanos(value int64) time.Time {
	return time.Unix(0, value).UTC()
}

// nullString stores empty snapshot fields as NULL.
func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

var _ storage.Handle = (*Storage)(nil)
