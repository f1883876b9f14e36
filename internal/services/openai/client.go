package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"postergeist/internal/services"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Captioner produces caption text for a prompt. Chat fails soft: transport
// and API errors come back as an "Error: ..." string instead of an error
// value, matching the contract the caption pipeline inherited.
type Captioner interface {
	Chat(ctx context.Context, prompt string) string
}

// Config captures the runtime settings for the chat completion API.
type Config struct {
	Enabled        bool
	APIKey         string
	BaseURL        string
	Model          string
	Role           string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
}

// NewCaptioner returns the networked captioner when enabled, otherwise a
// noop. Enabling without an API key is a configuration error.
func NewCaptioner(cfg Config, opts ...Option) (Captioner, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return New(cfg, opts...)
}

// Client wraps the chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New constructs a networked captioner.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "openai", "new", "api key required when captions are enabled", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	if cfg.Role == "" {
		cfg.Role = "You are default assistant"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 100
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}

	timeout := 30 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	N           int           `json:"n"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends the prompt and returns the first choice's content. Any failure
// is reported in-band as an "Error: ..." string.
func (c *Client) Chat(ctx context.Context, prompt string) string {
	content, err := c.sendMessage(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("Error: %s", err)
	}
	return content
}

func (c *Client) sendMessage(ctx context.Context, prompt string) (string, error) {
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.cfg.Role},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		N:           1,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Noop is the disabled captioner; it always returns an empty string.
type Noop struct{}

// Chat implements Captioner.
func (Noop) Chat(ctx context.Context, prompt string) string {
	return ""
}
