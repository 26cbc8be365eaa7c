package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"ratemovie/proj/internal/api/tasks"
	"ratemovie/proj/internal/clients/tmdb"
	"ratemovie/proj/internal/config"
	"ratemovie/proj/internal/domain/models"
	"ratemovie/proj/internal/lib/logger"
	"ratemovie/proj/internal/services"
	"ratemovie/proj/internal/storage"
	"ratemovie/proj/internal/storage/sqlite"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeCatalog struct {
	movies       map[int64]models.Movie
	err          error
	detailsCalls int
}

func (c *fakeCatalog) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	if c.err != nil {
		return nil, c.err
	}
	var found []models.Movie
	for _, movie := range c.movies {
		if query != "" && strings.Contains(strings.ToLower(movie.Title), strings.ToLower(query)) {
			found = append(found, movie)
		}
	}
	return found, nil
}

func (c *fakeCatalog) PopularMovies(ctx context.Context) ([]models.Movie, error) {
	if c.err != nil {
		return nil, c.err
	}
	var all []models.Movie
	for _, movie := range c.movies {
		all = append(all, movie)
	}
	return all, nil
}

func (c *fakeCatalog) MovieDetails(ctx context.Context, movieID int64) (*models.Movie, error) {
	c.detailsCalls++
	if c.err != nil {
		return nil, c.err
	}
	movie, ok := c.movies[movieID]
	if !ok {
		return nil, tmdb.ErrMovieNotFound
	}
	return &movie, nil
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{movies: map[int64]models.Movie{
		603:    {ID: 603, Title: "The Matrix", Overview: "A hacker learns the truth.", ReleaseDate: "1999-03-31", VoteAverage: 8.2},
		438631: {ID: 438631, Title: "Dune", Overview: "Paul Atreides.", ReleaseDate: "2021-09-15", VoteAverage: 7.8},
	}}
}

type testApp struct {
	*Application
	handler http.Handler
	catalog *fakeCatalog
	manager *storage.Manager
}

func NewTestApplication(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		DataDir: t.TempDir(),
		Storage: config.Storage{Driver: config.DriverSQLite, Path: "movies.db", BusyTimeout: time.Second},
		Auth:    config.Auth{BcryptCost: bcrypt.MinCost},
		Media:   config.Media{PhotosDir: "profile_photos"},
		Session: config.Session{Path: "session.json"},
	}
	log := logger.Discard()
	manager := storage.NewManager(log, func(ctx context.Context) (storage.Handle, error) {
		db, err := sqlite.New(ctx, cfg.DataPath(cfg.Storage.Path), cfg.Storage.BusyTimeout)
		if err != nil {
			return nil, err
		}
		return db, nil
	})
	handle, err := manager.Initialize(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	svc, err := services.New(log, cfg, handle)
	require.NoError(t, err)
	bgTasks := tasks.New(log, 1, 1)
	catalog := newFakeCatalog()
	app := NewApplication(cfg, log, svc, catalog, manager, bgTasks)
	return &testApp{Application: app, handler: app.routes(), catalog: catalog, manager: manager}
}

func (a *testApp) sessionPath() string {
	return a.cfg.DataPath(a.cfg.Session.Path)
}

func (a *testApp) photosDir() string {
	return filepath.Clean(a.cfg.DataPath(a.cfg.Media.PhotosDir))
}

type testResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, target, reader)
	a.handler.ServeHTTP(recorder, request)
	var resp testResponse
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp), recorder.Body.String())
	}
	return recorder, resp
}

func (a *testApp) signup(t *testing.T, email, name, password string) models.User {
	t.Helper()
	recorder, resp := a.do(t, http.MethodPost, "/api/v1/accounts/signup", map[string]string{
		"email": email, "name": name, "password": password,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var user models.User
	require.NoError(t, json.Unmarshal(resp.Data["user"], &user))
	return user
}

func decodeData[T any](t *testing.T, resp testResponse, key string) T {
	t.Helper()
	var value T
	require.Contains(t, resp.Data, key)
	require.NoError(t, json.Unmarshal(resp.Data[key], &value))
	return value
}
