// Package optimizer talks to the remote cutting-stock optimization service.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/SlabPlan/internal/model"
)

// OptimizePath is the service endpoint that accepts placement requests.
const OptimizePath = "/api/optimize"

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 4096

// ErrNetwork is wrapped by every transport-level failure.
var ErrNetwork = errors.New("optimizer unreachable")

// APIError is a non-2xx answer from the optimizer.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if msg := e.Detail(); msg != "" {
		return fmt.Sprintf("optimizer returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("optimizer returned %d", e.Status)
}

// Detail extracts a readable message from the body. The service reports
// errors as {"detail": ...}, where detail is a string or a list of
// validation entries with a "msg" field.
func (e *APIError) Detail() string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(e.Body)
	}
	var s string
	if json.Unmarshal(payload.Detail, &s) == nil {
		return s
	}
	var entries []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(payload.Detail, &entries) == nil {
		msgs := make([]string, 0, len(entries))
		for _, ent := range entries {
			if ent.Msg != "" {
				msgs = append(msgs, ent.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(payload.Detail)
}

// Client posts optimization requests. The zero value is not usable; use New.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *log.Logger
	attempts int
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry sets the attempt count and initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// New returns a client for the service at baseURL. timeout bounds each
// attempt, not the whole retry sequence.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string { return c.baseURL }

// Optimize sends req and decodes the placement result. Transport errors
// and 5xx answers are retried; 4xx answers are returned as *APIError.
func (c *Client) Optimize(ctx context.Context, req model.OptimizationRequest) (*model.PlacementResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + OptimizePath
	var result model.PlacementResult
	attempt := 0
	err = Retry(ctx, c.attempts, c.delay, func() error {
		attempt++
		c.logger.Debug("posting optimization request", "url", url, "attempt", attempt, "pieces", req.TotalPieces())
		body, err := c.post(ctx, url, payload)
		if err != nil {
			return err
		}
		r, err := model.DecodeResult(body)
		if err != nil {
			return fmt.Errorf("failed to decode optimizer response: %w", err)
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("optimization complete",
		"sheets", len(result.Sheets),
		"placed", result.GlobalMetrics.TotalPlacedPieces,
		"total", result.GlobalMetrics.TotalPieces,
	)
	return &result, nil
}

func (c *Client) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode, Body: string(snippet)}
		if resp.StatusCode >= 500 {
			c.logger.Warn("optimizer error, retrying", "status", resp.StatusCode)
			return nil, &RetryableError{Err: apiErr}
		}
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	return body, nil
}
