package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

const currentUserKey = "current_user_id"

type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store remembers which user, if any, is logged in. It lives outside the
// relational store, so the id it returns may refer to a user that no longer
// exists.
type Store struct {
	log     *slog.Logger
	storage KeyValueStorage
}

func New(log *slog.Logger, storage KeyValueStorage) *Store {
	return &Store{log: log, storage: storage}
}

func (s *Store) SetCurrentUser(ctx context.Context, userID int64) error {
	const op = "session.Store.SetCurrentUser"
	log := s.log.With("op", op, "user_id", userID)
	if err := s.storage.Set(ctx, currentUserKey, strconv.FormatInt(userID, 10)); err != nil {
		log.Error("failed to persist session", "errMsg", err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Debug("session set")
	return nil
}

// CurrentUser reports the logged-in user id. A missing or unreadable value
// means nobody is logged in.
func (s *Store) CurrentUser(ctx context.Context) (int64, bool, error) {
	const op = "session.Store.CurrentUser"
	log := s.log.With("op", op)
	raw, ok, err := s.storage.Get(ctx, currentUserKey)
	if err != nil {
		log.Error("failed to read session", "errMsg", err.Error())
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return 0, false, nil
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn("malformed session value ignored", "value", raw)
		return 0, false, nil
	}
	return userID, true, nil
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	const op = "session.Store.ClearCurrentUser"
	log := s.log.With("op", op)
	if err := s.storage.Delete(ctx, currentUserKey); err != nil {
		log.Error("failed to clear session", "errMsg", err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
