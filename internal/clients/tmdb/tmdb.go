package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"ratemovie/proj/internal/domain/fields"
	"ratemovie/proj/internal/domain/models"
	"strconv"
	"strings"
	"time"
)

const noOverview = "No description available"

var (
	ErrMovieNotFound = errors.New("movie not found in catalog")
	ErrUnavailable   = errors.New("movie catalog unavailable, check your connection")
)

type Client struct {
	log          *slog.Logger
	client       *http.Client
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	retriesCount int
	retryTimeout time.Duration
}

func New(
	log *slog.Logger,
	baseURL, imageBaseURL, apiKey, language string,
	timeout time.Duration,
	retriesCount int,
	retryTimeout time.Duration,
) *Client {
	if retriesCount < 1 {
		retriesCount = 1
	}
	return &Client{
		log:          log,
		client:       &http.Client{Timeout: timeout},
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		imageBaseURL: strings.TrimSuffix(imageBaseURL, "/"),
		apiKey:       apiKey,
		language:     language,
		retriesCount: retriesCount,
		retryTimeout: retryTimeout,
	}
}

type movieResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
}

type listResponse struct {
	Results []movieResult `json:"results"`
}

type detailsResponse struct {
	movieResult
	Runtime          int32  `json:"runtime"`
	OriginalLanguage string `json:"original_language"`
	Genres           []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

func (c *Client) imageURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + path
}

func (c *Client) toMovie(r movieResult) models.Movie {
	overview := r.Overview
	if overview == "" {
		overview = noOverview
	}
	return models.Movie{
		ID:           r.ID,
		Title:        r.Title,
		Overview:     overview,
		PosterPath:   c.imageURL(r.PosterPath),
		BackdropPath: c.imageURL(r.BackdropPath),
		ReleaseDate:  r.ReleaseDate,
		VoteAverage:  r.VoteAverage,
	}
}

// SearchMovies returns an empty list for a blank query without calling the API.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Movie{}, nil
	}
	return c.list(ctx, "/search/movie", url.Values{"query": {query}, "page": {"1"}})
}

func (c *Client) PopularMovies(ctx context.Context) ([]models.Movie, error) {
	return c.list(ctx, "/movie/popular", url.Values{"page": {"1"}})
}

func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*models.Movie, error) {
	var d detailsResponse
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(movieID, 10), nil, &d); err != nil {
		return nil, err
	}
	movie := c.toMovie(d.movieResult)
	movie.Runtime = fields.MovieRuntime(d.Runtime)
	movie.OriginalLanguage = d.OriginalLanguage
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	movie.Genres = strings.Join(genres, ", ")
	if movie.Genres == "" {
		movie.Genres = "N/A"
	}
	return &movie, nil
}

func (c *Client) list(ctx context.Context, endpoint string, params url.Values) ([]models.Movie, error) {
	var res listResponse
	if err := c.get(ctx, endpoint, params, &res); err != nil {
		return nil, err
	}
	movies := make([]models.Movie, 0, len(res.Results))
	for _, r := range res.Results {
		movies = append(movies, c.toMovie(r))
	}
	return movies, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dst any) error {
	const op = "tmdb.Client.get"
	log := c.log.With("op", op, "endpoint", endpoint)
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	u.RawQuery = q.Encode()

	var resp *http.Response
	for i := 0; i < c.retriesCount; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			case <-time.After(c.retryTimeout):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		resp, err = c.client.Do(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			break
		}
		if err == nil {
			resp.Body.Close()
			err = fmt.Errorf("catalog returned %d", resp.StatusCode)
		}
		resp = nil
		log.Warn("catalog request failed", "attempt", i+1, "errMsg", err.Error())
		if i == c.retriesCount-1 {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrMovieNotFound
	case resp.StatusCode != http.StatusOK:
		log.Error("unexpected catalog status", "status", resp.StatusCode)
		return fmt.Errorf("%w: catalog returned %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		log.Error("Error decoding catalog response", "errMsg", err.Error())
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
