package postgres

import (
	"context"
	"errors"
	"ratemovie/proj/internal/domain/fields"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/storage"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WatchedModel struct {
	DB *pgxpool.Pool
}

const watchedColumns = `id, user_id, movie_id, title,
	COALESCE(poster_path, '') AS poster_path,
	COALESCE(overview, '') AS overview,
	COALESCE(release_date, '') AS release_date,
	COALESCE(rating, 0) AS rating,
	COALESCE(user_rating, 0) AS user_rating,
	watched_date`

// Insert and UpdateRating keep watched_date strictly above the user's latest
// one. TIMESTAMPTZ only holds microseconds, so equal clock readings are common.
func (m *WatchedModel) Insert(
	ctx context.Context,
	userID int64,
	movie models.MovieSnapshot,
	rating fields.UserRating,
	watchedAt time.Time,
) (int64, error) {
	var id int64
	err := m.DB.QueryRow(
		ctx,
		`INSERT INTO watched_movies
		(user_id, movie_id, title, poster_path, overview, release_date, rating, user_rating, watched_date)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8,
			GREATEST($9::timestamptz, (SELECT MAX(watched_date) FROM watched_movies WHERE user_id = $1) + interval '1 microsecond'))
		RETURNING id`,
		userID,
		movie.MovieID,
		movie.Title,
		movie.PosterPath,
		movie.Overview,
		movie.ReleaseDate,
		movie.Rating,
		int32(rating),
		watchedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (m *WatchedModel) UpdateRating(ctx context.Context, userID, movieID int64, rating fields.UserRating, watchedAt time.Time) error {
	_, err := m.DB.Exec(
		ctx,
		`UPDATE watched_movies SET user_rating = $1,
		watched_date = GREATEST($2::timestamptz, (SELECT MAX(watched_date) FROM watched_movies WHERE user_id = $3) + interval '1 microsecond')
		WHERE user_id = $3 AND movie_id = $4`,
		int32(rating), watchedAt.UTC(), userID, movieID,
	)
	return mapError(err)
}

func (m *WatchedModel) Delete(ctx context.Context, userID, movieID int64) error {
	_, err := m.DB.Exec(ctx, "DELETE FROM watched_movies WHERE user_id = $1 AND movie_id = $2", userID, movieID)
	return err
}

func (m *WatchedModel) ListForUser(ctx context.Context, userID int64) ([]models.WatchedMovie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+watchedColumns+` FROM watched_movies WHERE user_id = $1 ORDER BY watched_date DESC, id DESC`,
		userID,
	)
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.WatchedMovie])
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (m *WatchedModel) Get(ctx context.Context, userID, movieID int64) (*models.WatchedMovie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+watchedColumns+` FROM watched_movies WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID,
	)
	movie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.WatchedMovie])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &movie, nil
}
