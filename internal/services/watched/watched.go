package watched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ratemovie/proj/internal/domain/fields"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/storage"
	"time"
)

type WatchedStorage interface {
	Insert(ctx context.Context, userID int64, movie models.MovieSnapshot, rating fields.UserRating, watchedAt time.Time) (int64, error)
	UpdateRating(ctx context.Context, userID, movieID int64, rating fields.UserRating, watchedAt time.Time) error
	Delete(ctx context.Context, userID, movieID int64) error
	ListForUser(ctx context.Context, userID int64) ([]models.WatchedMovie, error)
	Get(ctx context.Context, userID, movieID int64) (*models.WatchedMovie, error)
}

// WatchedService keeps one rating per user per catalog movie.
//
// Callers decide between Add and UpdateRating by probing with Get first. The
// unique constraint still guards the gap between the probe and the write, so
// Add can report ErrAlreadyRated even after Get returned nil.
type WatchedService struct {
	log     *slog.Logger
	storage WatchedStorage
	now     func() time.Time
}

func New(log *slog.Logger, storage WatchedStorage) *WatchedService {
	return &WatchedService{
		log:     log,
		storage: storage,
		now:     time.Now,
	}
}

func (s *WatchedService) unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrWatchedUnavailable, err)
}

// Add stores the snapshot with the user's rating and returns the record id.
// The rating range is not checked here.
func (s *WatchedService) Add(ctx context.Context, userID int64, movie models.MovieSnapshot, userRating fields.UserRating) (int64, error) {
	const op = "watched.WatchedService.Add"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movie.MovieID, "rating", userRating)
	id, err := s.storage.Insert(ctx, userID, movie, userRating, s.now())
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("movie already rated")
			return 0, ErrAlreadyRated
		case errors.Is(err, storage.ErrReference):
			log.Warn("user does not exist")
			return 0, ErrUserNotFound
		}
		log.Error(err.Error())
		return 0, s.unavailable(err)
	}
	return id, nil
}

// UpdateRating changes the rating and bumps watched_date. Nothing happens if
// the user never rated the movie.
func (s *WatchedService) UpdateRating(ctx context.Context, userID, movieID int64, newRating fields.UserRating) error {
	const op = "watched.WatchedService.UpdateRating"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID, "rating", newRating)
	if err := s.storage.UpdateRating(ctx, userID, movieID, newRating, s.now()); err != nil {
		log.Error(err.Error())
		return s.unavailable(err)
	}
	return nil
}

func (s *WatchedService) Remove(ctx context.Context, userID, movieID int64) error {
	const op = "watched.WatchedService.Remove"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	if err := s.storage.Delete(ctx, userID, movieID); err != nil {
		log.Error(err.Error())
		return s.unavailable(err)
	}
	return nil
}

// List returns the user's movies, most recently watched or rated first.
func (s *WatchedService) List(ctx context.Context, userID int64) ([]models.WatchedMovie, error) {
	const op = "watched.WatchedService.List"
	log := s.log.With("op", op, "user_id", userID)
	movies, err := s.storage.ListForUser(ctx, userID)
	if err != nil {
		log.Error(err.Error())
		return nil, s.unavailable(err)
	}
	return movies, nil
}

// Get returns nil without an error when the movie was never rated.
func (s *WatchedService) Get(ctx context.Context, userID, movieID int64) (*models.WatchedMovie, error) {
	const op = "watched.WatchedService.Get"
	log := s.log.With("op", op, "user_id", userID, "movie_id", movieID)
	movie, err := s.storage.Get(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		log.Error(err.Error())
		return nil, s.unavailable(err)
	}
	return movie, nil
}
