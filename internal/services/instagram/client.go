package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"postergeist/internal/location"
	"postergeist/internal/services"
)

const defaultBaseURL = "https://i.instagram.com/api/v1"

// mediaTypePhoto is the media_type value the API reports for a photo post
// that went through; anything else means the upload may not be visible.
const mediaTypePhoto = 1

// Config captures the runtime settings required to talk to the API.
type Config struct {
	Username       string
	Password       string
	BaseURL        string
	TimeoutSeconds int
}

// Client wraps the Instagram private API surface the poster needs: session
// login/logout, nearby location search, and photo upload.
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

// New constructs an Instagram client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Username == "" || cfg.Password == "" {
		return nil, services.Wrap(services.ErrConfiguration, "instagram", "new", "username and password required", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	timeout := 30 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// Login opens a session. A rejected login is an error; the caller aborts
// the run on failure.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	var parsed loginResponse
	if err := c.postForm(ctx, "/accounts/login/", form, &parsed); err != nil {
		return services.Wrap(services.ErrExternalService, "instagram", "login", "", err)
	}
	if !parsed.LoggedIn {
		return services.Wrap(services.ErrExternalService, "instagram", "login", "rejected: "+parsed.Message, nil)
	}
	return nil
}

// Logout closes the session. Failures are reported but are not fatal to a
// completed run.
func (c *Client) Logout(ctx context.Context) error {
	var parsed struct {
		Status string `json:"status"`
	}
	if err := c.postForm(ctx, "/accounts/logout/", url.Values{}, &parsed); err != nil {
		return services.Wrap(services.ErrExternalService, "instagram", "logout", "", err)
	}
	return nil
}

type venue struct {
	Name       string  `json:"name"`
	ExternalID string  `json:"external_id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

type locationSearchResponse struct {
	Venues []venue `json:"venues"`
	Status string  `json:"status"`
}

// SearchLocations returns named locations near the coordinate. An empty
// result is a valid outcome, not an error.
func (c *Client) SearchLocations(ctx context.Context, lat, lng float64) ([]location.Candidate, error) {
	endpoint := fmt.Sprintf("%s/location_search/?latitude=%s&longitude=%s",
		c.cfg.BaseURL,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lng, 'f', -1, 64),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var parsed locationSearchResponse
	if err := c.do(req, &parsed); err != nil {
		return nil, services.Wrap(services.ErrExternalService, "instagram", "location search", "", err)
	}

	candidates := make([]location.Candidate, 0, len(parsed.Venues))
	for _, v := range parsed.Venues {
		candidates = append(candidates, location.Candidate{
			Name:       v.Name,
			ExternalID: v.ExternalID,
			Lat:        v.Lat,
			Lng:        v.Lng,
		})
	}
	return candidates, nil
}

// Upload is the API's acknowledgement of a photo post.
type Upload struct {
	MediaType int    `json:"media_type"`
	Status    string `json:"status"`
}

// Succeeded reports whether the API confirmed a visible photo post.
func (u Upload) Succeeded() bool {
	return u.MediaType == mediaTypePhoto
}

// UploadPhoto posts the image at path with the given caption and location.
func (c *Client) UploadPhoto(ctx context.Context, path, caption string, loc location.Candidate) (Upload, error) {
	var empty Upload

	file, err := os.Open(path)
	if err != nil {
		return empty, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", filepath.Base(path))
	if err != nil {
		return empty, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return empty, fmt.Errorf("read image: %w", err)
	}
	_ = writer.WriteField("caption", caption)
	_ = writer.WriteField("location_name", loc.Name)
	_ = writer.WriteField("location_external_id", loc.ExternalID)
	_ = writer.WriteField("location_lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	_ = writer.WriteField("location_lng", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	if err := writer.Close(); err != nil {
		return empty, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/media/photo/upload/", &body)
	if err != nil {
		return empty, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var parsed Upload
	if err := c.do(req, &parsed); err != nil {
		return empty, services.Wrap(services.ErrExternalService, "instagram", "upload", "", err)
	}
	return parsed, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ location.CandidateSource = (*Client)(nil)
