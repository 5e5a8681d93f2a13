package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/internal/domain/types"
)

const matchPath = "/ai/match-volunteers"

// HTTPClient drives a running server.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client with a per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CheckHealth verifies the service is up.
func (c *HTTPClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// MatchRequest posts a wire request and decodes the response.
func (c *HTTPClient) MatchRequest(ctx context.Context, body types.MatchRequest) (types.MatchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return types.MatchResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+matchPath, bytes.NewReader(data))
	if err != nil {
		return types.MatchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return types.MatchResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.MatchResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.MatchResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var out types.MatchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return types.MatchResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return out, nil
}

// Matcher is the in-process matching surface, satisfied by the service.
type Matcher interface {
	Match(ctx context.Context, profile string, req matching.Request, o matching.Overrides) (types.MatchResponse, error)
}

// Target runs one wire request somewhere.
type Target interface {
	MatchRequest(ctx context.Context, req types.MatchRequest) (types.MatchResponse, error)
}

// Local adapts a Matcher to a Target, converting the wire request the same
// way the HTTP handler does.
type Local struct {
	M Matcher
}

// MatchRequest implements Target.
func (l Local) MatchRequest(ctx context.Context, req types.MatchRequest) (types.MatchResponse, error) {
	return l.M.Match(ctx, req.Profile, req.ToMatching(), req.Overrides())
}
