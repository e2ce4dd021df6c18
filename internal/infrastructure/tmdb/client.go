package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jakobng/showtimes/internal/config"
	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/ports"
)

// Client talks to The Movie Database API for search and detail lookups.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     *http.Client
}

var _ ports.MetadataSearcher = (*Client)(nil)

// New creates a reusable HTTP client from configuration.
func New(cfg config.TMDBConfig) *Client {
	language := cfg.Language
	if language == "" {
		language = "en-GB"
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		language: language,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
}

type detailResponse struct {
	searchResult

	Runtime int `json:"runtime"`
	Genres  []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Crew []struct {
			Job  string `json:"job"`
			Name string `json:"name"`
		} `json:"crew"`
	} `json:"credits"`
}

// SearchMovies queries /search/movie with the cleaned title, year-qualified
// when a hint is present.
func (c *Client) SearchMovies(ctx context.Context, query string, year int) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}

	var payload searchResponse
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	candidates := make([]domain.Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		candidates = append(candidates, domain.Candidate{
			ID:            r.ID,
			Title:         r.Title,
			OriginalTitle: r.OriginalTitle,
			ReleaseDate:   r.ReleaseDate,
			Overview:      r.Overview,
			PosterPath:    r.PosterPath,
			BackdropPath:  r.BackdropPath,
			VoteAverage:   r.VoteAverage,
			VoteCount:     r.VoteCount,
			Popularity:    r.Popularity,
		})
	}
	return candidates, nil
}

// MovieDetails fetches the full record for one movie, credits included.
func (c *Client) MovieDetails(ctx context.Context, id int64) (domain.MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var payload detailResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &payload); err != nil {
		return domain.MovieDetails{}, fmt.Errorf("details %d: %w", id, err)
	}

	details := domain.MovieDetails{
		Candidate: domain.Candidate{
			ID:            payload.ID,
			Title:         payload.Title,
			OriginalTitle: payload.OriginalTitle,
			ReleaseDate:   payload.ReleaseDate,
			Overview:      payload.Overview,
			PosterPath:    payload.PosterPath,
			BackdropPath:  payload.BackdropPath,
			VoteAverage:   payload.VoteAverage,
			VoteCount:     payload.VoteCount,
			Popularity:    payload.Popularity,
		},
		RuntimeMinutes: payload.Runtime,
	}
	for _, g := range payload.Genres {
		details.Genres = append(details.Genres, g.Name)
	}
	for _, member := range payload.Credits.Crew {
		if member.Job == "Director" {
			details.Director = member.Name
			break
		}
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if err := resp.Body.Close(); err != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, err)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
