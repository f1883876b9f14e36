package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"postergeist/internal/services"
)

const defaultBaseURL = "https://vision.googleapis.com/v1"

// Tagger produces text labels for an image. The noop implementation keeps
// the pipeline runnable with image analysis disabled.
type Tagger interface {
	Analyze(ctx context.Context, imagePath string) ([]string, error)
}

// Config captures the runtime settings for the label-detection API.
type Config struct {
	Enabled        bool
	APIKey         string
	BaseURL        string
	MaxResults     int
	TimeoutSeconds int
}

// NewTagger returns the networked tagger when enabled, otherwise a noop.
// Enabling without an API key is a configuration error.
func NewTagger(cfg Config, opts ...Option) (Tagger, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return New(cfg, opts...)
}

// Client calls the image annotation endpoint for label detection.
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

// New constructs a networked tagger.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "vision", "new", "api key required when vision is enabled", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}

	timeout := 20 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []struct {
			Description string  `json:"description"`
			Score       float64 `json:"score"`
		} `json:"labelAnnotations"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// Analyze runs label detection on the image at path and returns the label
// descriptions in API order.
func (c *Client) Analyze(ctx context.Context, imagePath string) ([]string, error) {
	content, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	payload := annotateRequest{
		Requests: []annotateEntry{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(content)},
			Features: []annotateFeature{{Type: "LABEL_DETECTION", MaxResults: c.cfg.MaxResults}},
		}},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/images:annotate?key=" + c.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "vision", "annotate", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalService, "vision", "annotate",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var parsed annotateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Responses) == 0 {
		return nil, nil
	}
	if apiErr := parsed.Responses[0].Error; apiErr != nil {
		return nil, services.Wrap(services.ErrExternalService, "vision", "annotate", apiErr.Message, nil)
	}

	labels := make([]string, 0, len(parsed.Responses[0].LabelAnnotations))
	for _, annotation := range parsed.Responses[0].LabelAnnotations {
		if label := strings.TrimSpace(annotation.Description); label != "" {
			labels = append(labels, label)
		}
	}
	return labels, nil
}

// Noop is the disabled tagger; it always returns an empty label list.
type Noop struct{}

// Analyze implements Tagger.
func (Noop) Analyze(ctx context.Context, imagePath string) ([]string, error) {
	return nil, nil
}
