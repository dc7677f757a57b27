// Package pexels fetches portrait stock footage, falling back to a bundled
// local clip when no search term yields a usable result.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
	"reelforge/internal/services"
)

const (
	defaultTimeout = 60 * time.Second
	perPage        = 15

	targetWidth  = 1080
	targetHeight = 1920
)

// Client searches and downloads Pexels videos.
type Client struct {
	cfg        config.Pexels
	httpClient *http.Client
	logger     *slog.Logger
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

func NewClient(cfg config.Pexels, logger *slog.Logger, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "pexels"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type searchResponse struct {
	Videos []video `json:"videos"`
}

type video struct {
	ID         int64       `json:"id"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	VideoFiles []videoFile `json:"video_files"`
}

type videoFile struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Link   string `json:"link"`
}

// Fetch tries each search query in order and downloads the best portrait
// match. When every query fails, the configured fallback clip is copied in
// and marked as such; a missing fallback fails the fetch.
func (c *Client) Fetch(ctx context.Context, req assets.FootageRequest) (assets.FootageResult, error) {
	if req.OutputPath == "" {
		return assets.FootageResult{}, services.Wrap(services.ErrValidation, "pexels", "fetch", "output path required", nil)
	}

	for _, query := range req.Queries {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		link, err := c.bestMatch(ctx, query)
		if err != nil {
			c.logger.Warn("footage search failed, trying next query",
				logging.String("query", query),
				logging.Error(err),
			)
			continue
		}
		if err := c.download(ctx, link, req.OutputPath); err != nil {
			c.logger.Warn("footage download failed, trying next query",
				logging.String("query", query),
				logging.Error(err),
			)
			continue
		}
		return assets.FootageResult{
			VideoPath: req.OutputPath,
			Meta:      assets.FootageMeta{Source: "pexels", Query: query},
		}, nil
	}

	return c.fallback(req)
}

func (c *Client) fallback(req assets.FootageRequest) (assets.FootageResult, error) {
	if c.cfg.FallbackClip == "" || !fileutil.FileExists(c.cfg.FallbackClip) {
		return assets.FootageResult{}, services.Wrap(services.ErrNotFound, "pexels", "fetch",
			"no footage found and no fallback clip configured", nil)
	}
	if err := fileutil.CopyFile(c.cfg.FallbackClip, req.OutputPath); err != nil {
		return assets.FootageResult{}, services.Wrap(services.ErrTransient, "pexels", "fetch", "copy fallback clip", err)
	}
	c.logger.Warn("using local fallback clip", logging.String("clip", c.cfg.FallbackClip))
	return assets.FootageResult{
		VideoPath: req.OutputPath,
		Meta:      assets.FootageMeta{Source: "fallback", Fallback: true},
	}, nil
}

// bestMatch returns the download link of the portrait video file closest
// to the canonical resolution for a query.
func (c *Client) bestMatch(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", services.Wrap(services.ErrConfiguration, "pexels", "search", "api key required", nil)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + url.Values{
		"query":       {query},
		"per_page":    {strconv.Itoa(perPage)},
		"orientation": {"portrait"},
	}.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "pexels", "search", "build request", err)
	}
	request.Header.Set("Authorization", c.cfg.APIKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "pexels", "search", "request failed", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4<<10))
		return "", services.Wrap(services.ErrTransient, "pexels", "search",
			fmt.Sprintf("http %d: %s", response.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var parsed searchResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return "", services.Wrap(services.ErrValidation, "pexels", "search", "decode response", err)
	}

	best := ""
	bestDistance := -1
	for _, v := range parsed.Videos {
		// Portrait means taller than wide; landscape results sneak into
		// portrait searches.
		if v.Height <= v.Width {
			continue
		}
		for _, file := range v.VideoFiles {
			distance := abs(file.Width-targetWidth) + abs(file.Height-targetHeight)
			if best == "" || distance < bestDistance {
				best = file.Link
				bestDistance = distance
			}
		}
	}
	if best == "" {
		return "", services.Wrap(services.ErrNotFound, "pexels", "search",
			fmt.Sprintf("no portrait videos for %q", query), nil)
	}
	return best, nil
}

func (c *Client) download(ctx context.Context, link, outputPath string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "pexels", "download", "build request", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return services.Wrap(services.ErrTransient, "pexels", "download", "request failed", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "pexels", "download",
			fmt.Sprintf("http %d", response.StatusCode), nil)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "pexels", "download", "create file", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, response.Body); err != nil {
		os.Remove(outputPath)
		return services.Wrap(services.ErrTransient, "pexels", "download", "write file", err)
	}
	return nil
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
