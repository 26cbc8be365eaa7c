package main

import (
	"net/http"
	"ratemovie/proj/internal/domain/models"
)

func (app *Application) searchMovies(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Query string `schema:"query"`
	}
	if err := app.decoder.Decode(&params, r.URL.Query()); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	movies, err := app.catalog.SearchMovies(r.Context(), params.Query)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respondMovies(w, r, movies)
}

func (app *Application) popularMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := app.catalog.PopularMovies(r.Context())
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respondMovies(w, r, movies)
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	movie, err := app.catalog.MovieDetails(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movie": movie}, "")
}

func (app *Application) respondMovies(w http.ResponseWriter, r *http.Request, movies []models.Movie) {
	if movies == nil {
		movies = []models.Movie{}
	}
	app.Http.Ok(w, r, envelop{"movies": movies}, "")
}
