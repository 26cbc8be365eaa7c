package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"ratemovie/proj/internal/domain/fields"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/storage"
	"time"
)

type WatchedModel struct {
	DB *sql.DB
}

const watchedColumns = `id, user_id, movie_id, title, COALESCE(poster_path, ''), COALESCE(overview, ''),
	COALESCE(release_date, ''), COALESCE(rating, 0), COALESCE(user_rating, 0), watched_date`

// nextWatchedDate takes the clock reading and the user id. It never returns a
// value at or below the user's latest watched_date, so the row being written
// always sorts first even when the clock repeats an instant.
const nextWatchedDate = `MAX(?, COALESCE((SELECT MAX(watched_date) FROM watched_movies WHERE user_id = ?) + 1, 0))`

type scanner interface {
	Scan(dest ...any) error
}

func scanWatched(row scanner) (models.WatchedMovie, error) {
	var (
		movie       models.WatchedMovie
		watchedDate int64
	)
	err := row.Scan(
		&movie.ID,
		&movie.UserID,
		&movie.MovieID,
		&movie.Title,
		&movie.PosterPath,
		&movie.Overview,
		&movie.ReleaseDate,
		&movie.Rating,
		&movie.UserRating,
		&watchedDate,
	)
	if err != nil {
		return models.WatchedMovie{}, err
	}
	movie.WatchedDate = fromNanos(watchedDate)
	return movie, nil
}

func (m *WatchedModel) Insert(
	ctx context.Context,
	userID int64,
	movie models.MovieSnapshot,
	rating fields.UserRating,
	watchedAt time.Time,
) (int64, error) {
	res, err := m.DB.ExecContext(
		ctx,
		`INSERT INTO watched_movies
		(user_id, movie_id, title, poster_path, overview, release_date, rating, user_rating, watched_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, `+nextWatchedDate+`)`,
		userID,
		movie.MovieID,
		movie.Title,
		nullString(movie.PosterPath),
		nullString(movie.Overview),
		nullString(movie.ReleaseDate),
		movie.Rating,
		rating,
		toNanos(watchedAt),
		userID,
	)
	if err != nil {
		return 0, mapError(err)
	}
	return res.LastInsertId()
}

func (m *WatchedModel) UpdateRating(ctx context.Context, userID, movieID int64, rating fields.UserRating, watchedAt time.Time) error {
	_, err := m.DB.ExecContext(
		ctx,
		`UPDATE watched_movies SET user_rating = ?, watched_date = `+nextWatchedDate+`
		WHERE user_id = ? AND movie_id = ?`,
		rating, toNanos(watchedAt), userID, userID, movieID,
	)
	return mapError(err)
}

func (m *WatchedModel) Delete(ctx context.Context, userID, movieID int64) error {
	_, err := m.DB.ExecContext(ctx, `DELETE FROM watched_movies WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	return err
}

func (m *WatchedModel) ListForUser(ctx context.Context, userID int64) ([]models.WatchedMovie, error) {
	rows, err := m.DB.QueryContext(
		ctx,
		`SELECT `+watchedColumns+` FROM watched_movies WHERE user_id = ? ORDER BY watched_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]models.WatchedMovie, 0)
	for rows.Next() {
		movie, err := scanWatched(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

func (m *WatchedModel) Get(ctx context.Context, userID, movieID int64) (*models.WatchedMovie, error) {
	row := m.DB.QueryRowContext(
		ctx,
		`SELECT `+watchedColumns+` FROM watched_movies WHERE user_id = ? AND movie_id = ?`,
		userID, movieID,
	)
	movie, err := scanWatched(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &movie, nil
}
