// Package tts synthesizes narration audio through an OpenAI-style speech
// endpoint and measures the produced duration with ffprobe.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/media/ffprobe"
	"reelforge/internal/services"
)

const defaultTimeout = 120 * time.Second

// Client talks to the speech synthesis service.
type Client struct {
	cfg           config.TTS
	ffprobeBinary string
	httpClient    *http.Client
	probe         func(ctx context.Context, path string) (float64, error)
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

// WithDurationProbe overrides duration measurement (for testing).
func WithDurationProbe(probe func(ctx context.Context, path string) (float64, error)) Option {
	return func(c *Client) {
		if probe != nil {
			c.probe = probe
		}
	}
}

func NewClient(cfg config.TTS, ffprobeBinary string, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	client := &Client{
		cfg:           cfg,
		ffprobeBinary: ffprobeBinary,
		httpClient:    &http.Client{Timeout: timeout},
	}
	client.probe = func(ctx context.Context, path string) (float64, error) {
		return ffprobe.Duration(ctx, client.ffprobeBinary, path)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format"`
	// Instructions carries the mood hint for models that honor it.
	Instructions string `json:"instructions,omitempty"`
}

// Synthesize produces one narration WAV at req.OutputPath and returns its
// probed duration. Empty text is a validation error.
func (c *Client) Synthesize(ctx context.Context, req assets.SpeechRequest) (assets.SpeechResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return assets.SpeechResult{}, services.Wrap(services.ErrValidation, "tts", "synthesize", "text required", nil)
	}
	if req.OutputPath == "" {
		return assets.SpeechResult{}, services.Wrap(services.ErrValidation, "tts", "synthesize", "output path required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return assets.SpeechResult{}, services.Wrap(services.ErrConfiguration, "tts", "synthesize", "api key required", nil)
	}

	payload := speechRequest{
		Model:          c.cfg.Model,
		Input:          req.Text,
		Voice:          req.Voice,
		Speed:          req.Speed,
		ResponseFormat: "wav",
	}
	if req.Mood != "" {
		payload.Instructions = "Read in a " + req.Mood + " tone."
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return assets.SpeechResult{}, services.Wrap(services.ErrValidation, "tts", "synthesize", "encode request", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return assets.SpeechResult{}, services.Wrap(services.ErrValidation, "tts", "synthesize", "build request", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return assets.SpeechResult{}, services.Wrap(services.ErrTransient, "tts", "synthesize", "request failed", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 4<<10))
		return assets.SpeechResult{}, services.Wrap(services.ErrTransient, "tts", "synthesize",
			fmt.Sprintf("http %d: %s", response.StatusCode, strings.TrimSpace(string(detail))), nil)
	}

	file, err := os.Create(req.OutputPath)
	if err != nil {
		return assets.SpeechResult{}, services.Wrap(services.ErrTransient, "tts", "synthesize", "create audio file", err)
	}
	_, copyErr := io.Copy(file, response.Body)
	if err := errors.Join(copyErr, file.Close()); err != nil {
		os.Remove(req.OutputPath)
		return assets.SpeechResult{}, services.Wrap(services.ErrTransient, "tts", "synthesize", "write audio file", err)
	}

	duration, err := c.probe(ctx, req.OutputPath)
	if err != nil {
		return assets.SpeechResult{}, services.Wrap(services.ErrExternalTool, "tts", "synthesize", "probe audio duration", err)
	}
	return assets.SpeechResult{AudioPath: req.OutputPath, DurationSeconds: duration}, nil
}
