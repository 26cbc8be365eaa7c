package storage

import (
	"context"
	"ratemovie/proj/internal/domain/fields"
	"ratemovie/proj/internal/domain/models"
	"time"
)

// UserModel is the users table as every backend exposes it.
type UserModel interface {
	Insert(ctx context.Context, email, name string, passwordHash []byte) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePhotoPath(ctx context.Context, id int64, photoPath string) error
}

// WatchedModel is the watched_movies table as every backend exposes it.
// Every method is a single statement.
type WatchedModel interface {
	Insert(ctx context.Context, userID int64, movie models.MovieSnapshot, rating fields.UserRating, watchedAt time.Time) (int64, error)
	UpdateRating(ctx context.Context, userID, movieID int64, rating fields.UserRating, watchedAt time.Time) error
	Delete(ctx context.Context, userID, movieID int64) error
	ListForUser(ctx context.Context, userID int64) ([]models.WatchedMovie, error)
	Get(ctx context.Context, userID, movieID int64) (*models.WatchedMovie, error)
}

// Handle is an opened relational store.
type Handle interface {
	// Migrate creates missing tables. It never alters existing ones.
	Migrate(ctx context.Context) error
	Users() UserModel
	Watched() WatchedModel
	Close() error
}
