package main

import (
	"errors"
	"net/http"
	"ratemovie/proj/internal/clients/tmdb"
	"ratemovie/proj/internal/domain/fields"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/services/watched"
)

type ratingInput struct {
	UserRating fields.UserRating `json:"user_rating" validate:"userrating"`
}

func (app *Application) watchedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, watched.ErrAlreadyRated):
		app.Http.Conflict(w, r, err.Error())
	case errors.Is(err, watched.ErrUserNotFound):
		app.Http.NotFound(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, watched.ErrWatchedUnavailable.Error())
	}
}

func (app *Application) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tmdb.ErrMovieNotFound):
		app.Http.NotFound(w, r, tmdb.ErrMovieNotFound.Error())
	case errors.Is(err, tmdb.ErrUnavailable):
		app.Http.Unavailable(w, r, err, tmdb.ErrUnavailable.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

func (app *Application) listWatched(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)
	movies, err := app.services.Watched.List(r.Context(), user.ID)
	if err != nil {
		app.watchedError(w, r, err)
		return
	}
	if movies == nil {
		movies = []models.WatchedMovie{}
	}
	app.Http.Ok(w, r, envelop{"watched": movies}, "")
}

func (app *Application) addWatched(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MovieID     int64             `json:"movie_id" validate:"gt=0"`
		Title       string            `json:"title" validate:"required"`
		PosterPath  string            `json:"poster_path"`
		Overview    string            `json:"overview"`
		ReleaseDate string            `json:"release_date"`
		Rating      float64           `json:"rating" validate:"gte=0,lte=10"`
		UserRating  fields.UserRating `json:"user_rating" validate:"userrating"`
	}
	if !app.readValidJSON(w, r, &input) {
		return
	}
	user := app.currentUser(r)
	snapshot := models.MovieSnapshot{
		MovieID:     input.MovieID,
		Title:       input.Title,
		PosterPath:  input.PosterPath,
		Overview:    input.Overview,
		ReleaseDate: input.ReleaseDate,
		Rating:      input.Rating,
	}
	id, err := app.services.Watched.Add(r.Context(), user.ID, snapshot, input.UserRating)
	if err != nil {
		app.watchedError(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"id": id}, "")
}

func (app *Application) getWatched(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "movieID")
	if !ok {
		return
	}
	user := app.currentUser(r)
	movie, err := app.services.Watched.Get(r.Context(), user.ID, movieID)
	if err != nil {
		app.watchedError(w, r, err)
		return
	}
	if movie == nil {
		app.Http.NotFound(w, r, "You have not rated this movie")
		return
	}
	app.Http.Ok(w, r, envelop{"watched": movie}, "")
}

func (app *Application) updateWatchedRating(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "movieID")
	if !ok {
		return
	}
	var input ratingInput
	if !app.readValidJSON(w, r, &input) {
		return
	}
	user := app.currentUser(r)
	existing, err := app.services.Watched.Get(r.Context(), user.ID, movieID)
	if err != nil {
		app.watchedError(w, r, err)
		return
	}
	if existing == nil {
		app.Http.NotFound(w, r, "You have not rated this movie")
		return
	}
	if err := app.services.Watched.UpdateRating(r.Context(), user.ID, movieID, input.UserRating); err != nil {
		app.watchedError(w, r, err)
		return
	}
	app.respondWatched(w, r, user.ID, movieID, http.StatusOK)
}

// rateMovie adds the movie with a catalog snapshot on the first rating and
// updates the rating afterwards.
func (app *Application) rateMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "movieID")
	if !ok {
		return
	}
	var input ratingInput
	if !app.readValidJSON(w, r, &input) {
		return
	}
	user := app.currentUser(r)
	log := app.Http.setupLogPerReq(r).With("user_id", user.ID, "movie_id", movieID)
	existing, err := app.services.Watched.Get(r.Context(), user.ID, movieID)
	if err != nil {
		app.watchedError(w, r, err)
		return
	}
	if existing != nil {
		if err := app.services.Watched.UpdateRating(r.Context(), user.ID, movieID, input.UserRating); err != nil {
			app.watchedError(w, r, err)
			return
		}
		app.respondWatched(w, r, user.ID, movieID, http.StatusOK)
		return
	}
	movie, err := app.catalog.MovieDetails(r.Context(), movieID)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	_, err = app.services.Watched.Add(r.Context(), user.ID, movie.Snapshot(), input.UserRating)
	if errors.Is(err, watched.ErrAlreadyRated) {
		log.Info("movie rated concurrently, updating instead")
		if err := app.services.Watched.UpdateRating(r.Context(), user.ID, movieID, input.UserRating); err != nil {
			app.watchedError(w, r, err)
			return
		}
		app.respondWatched(w, r, user.ID, movieID, http.StatusOK)
		return
	}
	if err != nil {
		app.watchedError(w, r, err)
		return
	}
	app.respondWatched(w, r, user.ID, movieID, http.StatusCreated)
}

func (app *Application) respondWatched(w http.ResponseWriter, r *http.Request, userID, movieID int64, status int) {
	movie, err := app.services.Watched.Get(r.Context(), userID, movieID)
	if err != nil {
		app.watchedError(w, r, err)
		return
	}
	app.Http.Response(w, r, envelop{"watched": movie}, "", status)
}

func (app *Application) removeWatched(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "movieID")
	if !ok {
		return
	}
	user := app.currentUser(r)
	if err := app.services.Watched.Remove(r.Context(), user.ID, movieID); err != nil {
		app.watchedError(w, r, err)
		return
	}
	app.Http.NoContent(w, r)
}
