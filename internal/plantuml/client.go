package plantuml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultServerURL is the public PlantUML server.
const DefaultServerURL = "https://www.plantuml.com/plantuml"

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 16 << 20

// ErrUpstream is returned when the PlantUML server answers with a non-2xx
// status. PlantUML reports syntax errors this way.
var ErrUpstream = errors.New("plantuml server rejected diagram")

// StatusError carries the upstream status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("plantuml server returned status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

// Client fetches rendered diagrams from a PlantUML server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server URL this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// SVG returns the SVG markup for an encoded diagram token.
func (c *Client) SVG(ctx context.Context, token string) ([]byte, error) {
	return c.fetch(ctx, "svg", token)
}

// PNG returns the PNG image for an encoded diagram token.
func (c *Client) PNG(ctx context.Context, token string) ([]byte, error) {
	return c.fetch(ctx, "png", token)
}

func (c *Client) fetch(ctx context.Context, format, token string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, format, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plantuml request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading plantuml response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
