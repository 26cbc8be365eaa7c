package postgres

import (
	"context"
	"errors"
	"fmt"
	"ratemovie/proj/internal/storage"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ErrConflictCode  = "23505"
	ErrReferenceCode = "23503"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGSERIAL PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		password   TEXT NOT NULL,
		photo_path TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS watched_movies (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL REFERENCES users (id),
		movie_id     BIGINT NOT NULL,
		title        TEXT NOT NULL,
		poster_path  TEXT,
		overview     TEXT,
		release_date TEXT,
		rating       DOUBLE PRECISION,
		user_rating  INTEGER,
		watched_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, movie_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watched_movies_user_date ON watched_movies (user_id, watched_date DESC)`,
}

type Storage struct {
	Conn    *pgxpool.Pool
	users   *UserModel
	watched *WatchedModel
}

func New(ctx context.Context, dsn string, maxConns int, maxConnIdleTime time.Duration) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = int32(maxConns)
	cfg.MaxConnIdleTime = maxConnIdleTime
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Storage{
		Conn:    pool,
		users:   &UserModel{DB: pool},
		watched: &WatchedModel{DB: pool},
	}, nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.Conn.Exec(ctx, stmt); err != nil {
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
	s.Conn.Close()
	return nil
}

func mapError(err error) error {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		switch pgxErr.Code {
		case ErrConflictCode:
			return fmt.Errorf("%w: %w", storage.ErrConflict, err)
		case ErrReferenceCode:
			return fmt.Errorf("%w: %w", storage.ErrReference, err)
		}
	}
	return err
}

var _ storage.Handle = (*Storage)(nil)
