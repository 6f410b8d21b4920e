// Package client is a Go client for the tzmeet HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/okian/tzmeet/internal/domain/types"
	"github.com/okian/tzmeet/pkg/logger"
)

// Default client configuration constants.
const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 4
	defaultDelay    = 200 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
	maxErrorBody    = 64 << 10
)

// Client calls a tzmeet server. Server errors, 429 and transport failures
// are retried with jittered backoff; other 4xx responses are returned
// immediately as *APIError.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
	logger   logger.Logger
}

// New creates a client for the server at baseURL, e.g. http://localhost:9080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
		delay:    defaultDelay,
		maxDelay: defaultMaxDelay,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Find ranks meeting times for one day.
func (c *Client) Find(ctx context.Context, req types.MeetingRequest) (types.PlanView, error) {
	var out types.PlanView
	err := c.do(ctx, http.MethodPost, "/v1/meetings/find", req, &out)
	return out, err
}

// Search ranks meeting times over days consecutive days.
func (c *Client) Search(ctx context.Context, req types.MeetingRequest, days int) (types.SearchView, error) {
	var out types.SearchView
	path := "/v1/meetings/search?days=" + strconv.Itoa(days)
	err := c.do(ctx, http.MethodPost, path, req, &out)
	return out, err
}

// Convert renders hour in reference on date as seen in target.
func (c *Client) Convert(ctx context.Context, target, reference, date string, hour float64) (types.ConversionView, error) {
	q := url.Values{}
	q.Set("tz", target)
	q.Set("ref", reference)
	q.Set("date", date)
	q.Set("hour", strconv.FormatFloat(hour, 'f', -1, 64))

	var out types.ConversionView
	err := c.do(ctx, http.MethodGet, "/v1/convert?"+q.Encode(), nil, &out)
	return out, err
}

// Timeline renders each selected participant's clock across the reference day.
func (c *Client) Timeline(ctx context.Context, req types.MeetingRequest) (types.TimelineView, error) {
	var out types.TimelineView
	err := c.do(ctx, http.MethodPost, "/v1/timeline", req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("%w: encode body: %w", ErrRequest, err)
		}
	}
	target := c.baseURL + path

	err := retry.Do(
		func() error {
			var rd io.Reader
			if payload != nil {
				rd = bytes.NewReader(payload)
			}
			req, err := http.NewRequestWithContext(ctx, method, target, rd)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("%w: %w", ErrRequest, err))
			}
			if payload != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.http.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrRequest, err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode >= http.StatusBadRequest {
				apiErr := decodeAPIError(resp)
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
					return apiErr
				}
				return retry.Unrecoverable(apiErr)
			}

			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("%w: decode response: %w", ErrRequest, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(c.maxDelay),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug(ctx, "retrying request",
				logger.String("method", method),
				logger.String("path", path),
				logger.Int("attempt", int(n)+1),
				logger.Error(err),
			)
		}),
	)
	return err
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Code: "http_error", Message: http.StatusText(resp.StatusCode)}
	var ev types.ErrorView
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&ev); err == nil && ev.Code != "" {
		apiErr.Code = ev.Code
		apiErr.Message = ev.Message
		apiErr.RequestID = ev.RequestID
	}
	return apiErr
}
