package models

import (
	"ratemovie/proj/internal/domain/fields"
	"time"
)

type User struct {
	ID           int64   `json:"id" db:"id"`
	Email        string  `json:"email" db:"email"`
	Name         string  `json:"name" db:"name"`
	PasswordHash []byte  `json:"-" db:"password"`
	PhotoPath    *string `json:"photo_path,omitempty" db:"photo_path"` // nil until a photo is saved
}

// MovieSnapshot is the catalog data copied into a watched record at rating time.
type MovieSnapshot struct {
	MovieID     int64   `json:"movie_id" db:"movie_id"`
	Title       string  `json:"title" db:"title"`
	PosterPath  string  `json:"poster_path,omitempty" db:"poster_path"`
	Overview    string  `json:"overview,omitempty" db:"overview"`
	ReleaseDate string  `json:"release_date,omitempty" db:"release_date"`
	Rating      float64 `json:"rating" db:"rating"` // catalog aggregate score
}

type WatchedMovie struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`
	MovieSnapshot
	UserRating  fields.UserRating `json:"user_rating" db:"user_rating"`
	WatchedDate time.Time         `json:"watched_date" db:"watched_date"`
}

// Movie is a catalog entry as returned by the remote catalog client.
type Movie struct {
	ID               int64               `json:"id"`
	Title            string              `json:"title"`
	Overview         string              `json:"overview"`
	PosterPath       string              `json:"poster_path,omitempty"`
	BackdropPath     string              `json:"backdrop_path,omitempty"`
	ReleaseDate      string              `json:"release_date,omitempty"`
	VoteAverage      float64             `json:"vote_average"`
	Runtime          fields.MovieRuntime `json:"runtime,omitempty"`
	Genres           string              `json:"genres,omitempty"`
	OriginalLanguage string              `json:"original_language,omitempty"`
}

func (m *Movie) Snapshot() MovieSnapshot {
	return MovieSnapshot{
		MovieID:     m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		Rating:      m.VoteAverage,
	}
}
