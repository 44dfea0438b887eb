// Package cover provides a client for the external cover-document generator.
package cover

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/interfaces"
	"github.com/ternarybob/docmark/internal/models"
)

const (
	// DefaultPath is the generator's render endpoint.
	DefaultPath = "/api/cover"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 4 << 10

	// maxCoverBytes caps the accepted cover document size.
	maxCoverBytes = 32 << 20
)

// Client is a cover-generator client.
type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	validate   *validator.Validate
}

// Compile-time assertion
var _ interfaces.CoverService = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithPath sets the render endpoint path.
func WithPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.path = path
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMinInterval spaces requests at least interval apart. Zero disables limiting.
func WithMinInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NewClient creates a new cover-generator client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    DefaultPath,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		validate: validator.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig builds a client from the [cover] section
func NewClientFromConfig(cfg common.CoverConfig, logger arbor.ILogger) *Client {
	return NewClient(cfg.BaseURL,
		WithPath(cfg.Path),
		WithHTTPClient(&http.Client{Timeout: cfg.TimeoutDuration()}),
		WithMinInterval(cfg.RateLimitInterval()),
		WithLogger(logger),
	)
}

// APIError represents a non-success response from the cover generator.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cover service error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Is lets errors.Is(err, models.ErrDependencyFailure) match
func (e *APIError) Is(target error) bool {
	return target == models.ErrDependencyFailure
}

// Query builds the generator's query string for req
func Query(req models.CoverRequest) url.Values {
	params := url.Values{}
	params.Set("title", req.Title)
	params.Set("filename", req.Filename)
	params.Set("words", strconv.Itoa(req.WordCount))
	params.Set("chars", strconv.Itoa(req.CharCount))
	params.Set("file_size", strconv.FormatInt(req.FileSize, 10))
	params.Set("pages", strconv.Itoa(req.PageCount))

	names := make([]string, 0, len(req.Percentages))
	for name := range req.Percentages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		params.Set("percent_"+name, strconv.Itoa(req.Percentages[name]))
	}
	return params
}

// RenderCover asks the generator for the cover pages of req and returns the PDF bytes.
// All failures match models.ErrDependencyFailure.
func (c *Client) RenderCover(ctx context.Context, req models.CoverRequest) ([]byte, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid cover request: %v", models.ErrDependencyFailure, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %v", models.ErrDependencyFailure, err)
		}
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, c.path, Query(req).Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", models.ErrDependencyFailure, err)
	}
	httpReq.Header.Set("Accept", "application/pdf")

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+c.path).
			Int("pages", req.PageCount).
			Msg("Cover service request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: failed to execute request: %v", models.ErrDependencyFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
			Endpoint:   c.path,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", models.ErrDependencyFailure, err)
	}
	if len(data) > maxCoverBytes {
		return nil, fmt.Errorf("%w: cover document exceeds %d bytes", models.ErrDependencyFailure, maxCoverBytes)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: cover service returned %d bytes that are not a PDF", models.ErrDependencyFailure, len(data))
	}

	if c.logger != nil {
		c.logger.Debug().
			Int("bytes", len(data)).
			Dur("elapsed", time.Since(start)).
			Msg("Cover service response")
	}

	return data, nil
}

// errorMessage prefers the service's own message: a JSON "error" or "message"
// field, else the plain body, else the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return "cover generation failed: " + strings.ToLower(text)
	}
	return "cover generation failed"
}

// IsAPIError reports whether err carries a cover service response
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
