package main

import (
	"context"
	"log/slog"
	"ratemovie/proj/internal/api/tasks"
	"ratemovie/proj/internal/config"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/lib/decoder"
	"ratemovie/proj/internal/lib/validator"
	"ratemovie/proj/internal/services"
	"ratemovie/proj/internal/storage"

	govalidator "github.com/go-playground/validator/v10"
)

// Catalog is the remote movie catalog the handlers read from.
type Catalog interface {
	SearchMovies(ctx context.Context, query string) ([]models.Movie, error)
	PopularMovies(ctx context.Context) ([]models.Movie, error)
	MovieDetails(ctx context.Context, movieID int64) (*models.Movie, error)
}

// StoreStatus reports whether the relational store finished initializing.
type StoreStatus interface {
	Handle() (storage.Handle, error)
}

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	services  *services.Services
	catalog   Catalog
	store     StoreStatus
	validator *govalidator.Validate
	decoder   *decoder.URLDecoder
	bgTasks   *tasks.BackgroundTasks
}

func NewApplication(
	cfg *config.Config,
	log *slog.Logger,
	services *services.Services,
	catalog Catalog,
	store StoreStatus,
	bgTasks *tasks.BackgroundTasks,
) *Application {
	queryDecoder := decoder.New()
	queryDecoder.IgnoreUnknownKeys(true)
	return &Application{
		cfg:       cfg,
		log:       log,
		validator: validator.New(),
		decoder:   queryDecoder,
		services:  services,
		catalog:   catalog,
		store:     store,
		bgTasks:   bgTasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
