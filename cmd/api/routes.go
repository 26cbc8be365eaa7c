package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/signup", app.signup)
			r.Post("/login", app.login)
			r.Post("/logout", app.logout)
			r.Group(func(r chi.Router) {
				r.Use(app.requireAuthenticatedUser)
				r.Get("/me", app.me)
				r.Put("/me/photo", app.saveProfilePhoto)
				r.Put("/me/photo/record", app.recordProfilePhoto)
			})
		})
		r.Route("/watched", func(r chi.Router) {
			r.Use(app.requireAuthenticatedUser)
			r.Get("/", app.listWatched)
			r.Post("/", app.addWatched)
			r.Get("/{movieID}", app.getWatched)
			r.Patch("/{movieID}", app.updateWatchedRating)
			r.Put("/{movieID}", app.rateMovie)
			r.Delete("/{movieID}", app.removeWatched)
		})
		r.Route("/movies", func(r chi.Router) {
			r.Get("/search", app.searchMovies)
			r.Get("/popular", app.popularMovies)
			r.Get("/{id}", app.getMovie)
		})
	})
	return router
}
