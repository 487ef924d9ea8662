package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ziadkadry99/usediagram/internal/plantuml"
)

// maxRemoteBody caps how much of a render endpoint response is read.
const maxRemoteBody = 16 << 20

// svgResponse is the body returned by GET /api/svg/{token}.
type svgResponse struct {
	Data string `json:"data"`
}

// Remote renders PlantUML by calling another usediagram deployment's
// /api/svg/{token} endpoint.
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote creates a Remote renderer for the deployment at endpoint.
func NewRemote(endpoint string, timeout time.Duration) *Remote {
	return &Remote{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Kind() string { return KindPlantUML }

func (r *Remote) Render(ctx context.Context, source string) (*Result, error) {
	token, err := plantuml.Encode(source)
	if err != nil {
		return nil, err
	}

	body, err := r.get(ctx, "svg", token)
	if err != nil {
		return nil, err
	}

	var resp svgResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal render response: %w", err)
	}
	return &Result{Kind: KindPlantUML, Markup: resp.Data}, nil
}

// PNG fetches a PNG rendering of an encoded token from /api/png/{token}.
func (r *Remote) PNG(ctx context.Context, token string) ([]byte, error) {
	return r.get(ctx, "png", token)
}

func (r *Remote) get(ctx context.Context, format, token string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/%s/%s", r.endpoint, format, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read render response: %w", err)
	}

	// Any non-2xx is treated as a syntax error, matching the endpoint contract.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: endpoint returned status %d", ErrSyntax, resp.StatusCode)
	}
	return body, nil
}
