// Package bridge reads fueling data from the station's local bridge agent,
// a small HTTP service that sits next to the POS database.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/dvloznov/posto-dashboard/internal/logger"
)

// DefaultTimeout applies when the caller does not set one.
const DefaultTimeout = 10 * time.Second

// Client talks to the bridge agent.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a bridge client for baseURL, e.g. "http://localhost:3001".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// StatusError is returned when the agent answers with a non-2xx status.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bridge %s: status %d: %s", e.Path, e.StatusCode, e.Body)
}

// Name implements source.Source.
func (c *Client) Name() string { return "bridge" }

// Ping checks the agent's /status endpoint once.
func (c *Client) Ping(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/status", nil, &status); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// Fuelings implements source.Source.
func (c *Client) Fuelings(ctx context.Context, start, end civil.Date) ([]domain.FuelingRecord, error) {
	q := url.Values{}
	q.Set("start", start.String())
	q.Set("end", end.String())

	var records []domain.FuelingRecord
	if err := c.get(ctx, "/abastecimentos", q, &records); err != nil {
		return nil, fmt.Errorf("Fuelings: %w", err)
	}
	return records, nil
}

// Attendants implements source.Source.
func (c *Client) Attendants(ctx context.Context) ([]domain.Attendant, error) {
	var attendants []domain.Attendant
	if err := c.get(ctx, "/funcionarios", nil, &attendants); err != nil {
		return nil, fmt.Errorf("Attendants: %w", err)
	}
	return attendants, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	ctxLog := logger.FromContext(ctx)
	ctxLog.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Bridge request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
