// Package tmdb looks up movie metadata and posters through The Movie
// Database API v3.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/services"
)

const defaultTimeout = 30 * time.Second

// Client talks to TMDB.
type Client struct {
	cfg        config.TMDB
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(cfg config.TMDB, opts ...Option) *Client {
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
}

type movieDetails struct {
	Tagline string `json:"tagline"`
}

// FetchMetadata searches for the movie, prefers an exact title match, and
// downloads the poster into destDir when one exists. A missing poster is
// not an error; a missing movie is.
func (c *Client) FetchMetadata(ctx context.Context, title, destDir string) (assets.MovieDetails, error) {
	if strings.TrimSpace(title) == "" {
		return assets.MovieDetails{}, services.Wrap(services.ErrValidation, "tmdb", "fetch metadata", "title required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return assets.MovieDetails{}, services.Wrap(services.ErrConfiguration, "tmdb", "fetch metadata", "api key required", nil)
	}

	match, err := c.search(ctx, title)
	if err != nil {
		return assets.MovieDetails{}, err
	}

	details := assets.MovieDetails{
		Title:    match.Title,
		Overview: match.Overview,
	}
	if len(match.ReleaseDate) >= 4 {
		details.Year = match.ReleaseDate[:4]
	}

	if tagline, err := c.tagline(ctx, match.ID); err == nil {
		details.Tagline = tagline
	}

	if match.PosterPath != "" {
		posterPath, err := c.downloadPoster(ctx, match.PosterPath, destDir)
		if err == nil {
			details.PosterPath = posterPath
		}
		// A failed poster download degrades the run; the caller skips
		// the ending scene.
	}
	return details, nil
}

func (c *Client) search(ctx context.Context, title string) (searchResult, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/search/movie?" + url.Values{
		"query":    {title},
		"language": {c.cfg.Language},
	}.Encode()

	var parsed searchResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return searchResult{}, err
	}
	if len(parsed.Results) == 0 {
		return searchResult{}, services.Wrap(services.ErrNotFound, "tmdb", "search",
			fmt.Sprintf("no results for %q", title), nil)
	}

	// Prefer an exact, case-insensitive title match over popularity order.
	for _, result := range parsed.Results {
		if strings.EqualFold(result.Title, title) {
			return result, nil
		}
	}
	return parsed.Results[0], nil
}

func (c *Client) tagline(ctx context.Context, movieID int64) (string, error) {
	endpoint := fmt.Sprintf("%s/movie/%d?language=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), movieID, url.QueryEscape(c.cfg.Language))
	var parsed movieDetails
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return "", err
	}
	return parsed.Tagline, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "tmdb", "request", "build request", err)
	}
	c.authorize(request)
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return services.Wrap(services.ErrTransient, "tmdb", "request", "request failed", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4<<10))
		return services.Wrap(services.ErrTransient, "tmdb", "request",
			fmt.Sprintf("http %d: %s", response.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return services.Wrap(services.ErrValidation, "tmdb", "request", "decode response", err)
	}
	return nil
}

// authorize applies either v4 bearer-token or v3 query-key auth; v4 read
// access tokens are JWTs and much longer than 32-char v3 keys.
func (c *Client) authorize(request *http.Request) {
	if len(c.cfg.APIKey) > 40 {
		request.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		return
	}
	query := request.URL.Query()
	query.Set("api_key", c.cfg.APIKey)
	request.URL.RawQuery = query.Encode()
}

func (c *Client) downloadPoster(ctx context.Context, posterPath, destDir string) (string, error) {
	endpoint := strings.TrimRight(c.cfg.ImageURL, "/") + posterPath
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "tmdb", "download poster", "build request", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "tmdb", "download poster", "request failed", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "tmdb", "download poster",
			fmt.Sprintf("http %d", response.StatusCode), nil)
	}

	target := filepath.Join(destDir, "poster"+filepath.Ext(posterPath))
	file, err := os.Create(target)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "tmdb", "download poster", "create file", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, response.Body); err != nil {
		os.Remove(target)
		return "", services.Wrap(services.ErrTransient, "tmdb", "download poster", "write file", err)
	}
	return target, nil
}
