package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"trustflow/internal/config"
	"trustflow/internal/strategy"
)

// Client talks to the advisory scoring endpoint over HTTP. Every failure
// mode collapses into ErrUnavailable so the policy has a single fallback
// path; the pipeline performs no retries.
type Client struct {
	endpoint string
	insights string
	http     *http.Client
}

func NewClient(cfg config.OracleConfig) *Client {
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		insights: cfg.InsightsEndpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// HasInsights reports whether an insights endpoint is configured.
func (c *Client) HasInsights() bool { return c.insights != "" }

func (c *Client) Recommend(ctx context.Context, req Request) (Recommendation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Recommendation{}, fmt.Errorf("%w: encoding request: %v", ErrUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Recommendation{}, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		slog.Warn("oracle request failed", "error", err)
		return Recommendation{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("oracle returned non-success status", "status", resp.StatusCode)
		return Recommendation{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var rec Recommendation
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		slog.Warn("oracle response unparsable", "error", err)
		return Recommendation{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return rec, nil
}

// Narrate asks the advisory insights endpoint for a free-text market read
// on the product. Same availability semantics as Recommend; callers degrade
// to no insights.
func (c *Client) Narrate(ctx context.Context, p strategy.Product) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("%w: encoding product: %v", ErrUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.insights, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Insights string `json:"insights"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return payload.Insights, nil
}
