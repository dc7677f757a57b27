// Package story generates the video script through an OpenAI-style
// chat-completions endpoint and validates what comes back.
package story

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/script"
	"reelforge/internal/services"
)

const defaultTimeout = 120 * time.Second

// Narrator voices the model may select from.
var voiceIDs = []string{
	"af_bella", "af_nicole", "af_sarah",
	"am_adam", "am_michael",
	"bf_emma", "bm_george",
}

const systemPrompt = "You are a charismatic screenwriter. You must output strictly valid JSON. " +
	"Do not include markdown formatting."

// Client talks to the script-generation service.
type Client struct {
	cfg        config.Story
	musicFiles []string
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

// NewClient builds a story client. musicFiles lists the bundled music
// tracks the model may pick for selected_music_file.
func NewClient(cfg config.Story, musicFiles []string, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		musicFiles: musicFiles,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces a validated script for the given movie.
func (c *Client) Generate(ctx context.Context, title, plot string) (*script.Script, error) {
	if strings.TrimSpace(title) == "" {
		return nil, services.Wrap(services.ErrValidation, "story", "generate", "movie title required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "story", "generate", "api key required", nil)
	}

	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: c.userPrompt(title, plot)},
		},
		Temperature:    0.7,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "story", "generate", "encode request", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "story", "generate", "build request", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "story", "generate", "request failed", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "story", "generate", "read response", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "story", "generate",
			fmt.Sprintf("http %d: %s", response.StatusCode, strings.TrimSpace(string(responseBody))), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, services.Wrap(services.ErrValidation, "story", "generate", "decode response envelope", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, services.Wrap(services.ErrTransient, "story", "generate", "empty completion", nil)
	}

	generated, err := script.Decode([]byte(parsed.Choices[0].Message.Content))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "story", "generate", "decode script", err)
	}
	generated.Normalize()
	if err := generated.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "story", "generate", "generated script invalid", err)
	}
	return generated, nil
}

func (c *Client) userPrompt(title, plot string) string {
	sceneCount := c.cfg.SceneCount
	if sceneCount <= 0 {
		sceneCount = 5
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a short-video script about the movie below. Do NOT name the movie anywhere in the narration; build intrigue instead.\n")
	fmt.Fprintf(&b, "Title: %s\nPlot: %s\n\n", title, plot)
	fmt.Fprintf(&b, "The output must be strictly valid JSON observing this schema:\n")
	b.WriteString(`{
  "title": "...",
  "genre": "...",
  "overall_mood": "...",
  "selected_voice_id": "...",
  "selected_music_file": "...",
  "scenes": [
    {
      "scene_index": 0,
      "narration": "The voiceover text...",
      "visual_queries": ["three", "stock footage", "search strings"],
      "mood": "...",
      "tts_speed": 1.0
    }
  ]
}
`)
	fmt.Fprintf(&b, "Request exactly %d scenes, scene_index starting at 0.\n", sceneCount)
	fmt.Fprintf(&b, "selected_voice_id must be one of: %s.\n", strings.Join(voiceIDs, ", "))
	if len(c.musicFiles) > 0 {
		fmt.Fprintf(&b, "selected_music_file must be one of: %s.\n", strings.Join(c.musicFiles, ", "))
	} else {
		b.WriteString("Set selected_music_file to an empty string.\n")
	}
	return b.String()
}
