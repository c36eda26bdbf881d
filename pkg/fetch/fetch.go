// Package fetch downloads remote background images over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// UserAgent is sent with every request; some image hosts reject clients
// that do not look like a browser.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultMaxBytes caps the size of a downloaded image.
const DefaultMaxBytes = 20 << 20

var (
	// ErrEmptyBody is returned when the server answers 2xx with no content.
	ErrEmptyBody = errors.New("fetch: empty response body")
	// ErrTooLarge is returned when the body exceeds Client.MaxBytes.
	ErrTooLarge = errors.New("fetch: response body too large")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s: HTTP %d", e.URL, e.Code)
}

// Client fetches raw bytes with a single attempt and no retries.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	MaxBytes  int64
	Log       *zap.Logger
}

// New creates a Client. A zero timeout leaves requests bounded only by the
// caller's context.
func New(timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: UserAgent,
		MaxBytes:  DefaultMaxBytes,
		Log:       log,
	}
}

// Fetch downloads url and returns the response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger().Debug("fetching image", zap.String("url", url))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyBody
	}

	c.logger().Debug("downloaded image", zap.String("url", url), zap.Int("bytes", len(data)))
	return data, nil
}

func (c *Client) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}
