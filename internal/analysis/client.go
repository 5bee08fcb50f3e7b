package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrNotConfigured is returned when the API key or analyzer ID is
	// missing.
	ErrNotConfigured = errors.New("analysis service not configured (set api key and analyzer id)")

	// ErrRequestFailed is returned when the service request fails at the
	// network or HTTP level.
	ErrRequestFailed = errors.New("analysis request failed")
)

// defaultBaseURL is the analysis service endpoint root.
const defaultBaseURL = "https://api.browser-use.com"

// maxErrorBody bounds how much of an error response body is kept for the
// error message.
const maxErrorBody = 512

// Client executes analyzer runs against the remote service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	analyzerID string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the service endpoint root, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client for the given credentials. An analyzer run
// can take a while server-side, so the default timeout is generous.
func NewClient(apiKey, analyzerID string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		analyzerID: analyzerID,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has the credentials it needs.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.analyzerID != ""
}

// Execute runs the analyzer against targetURL and returns the raw response
// payload. The payload is stored verbatim; use Normalize to interpret it.
func (c *Client) Execute(ctx context.Context, targetURL string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]any{
		"parameters": map[string]string{"url": targetURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v2/skills/%s/execute", c.baseURL, c.analyzerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Browser-Use-API-Key", c.apiKey)

	c.logger.Debug("executing analyzer", slog.String("target", targetURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := payload
		if len(detail) > maxErrorBody {
			detail = detail[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, detail)
	}

	return json.RawMessage(payload), nil
}
