// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

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

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/jeranaias/shopchat/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultURL is the local development backend.
	DefaultURL = "http://127.0.0.1:5000/chat"

	// DefaultMaxRetries is the total number of attempts per message.
	DefaultMaxRetries = 3

	// DefaultRetryStep is the linear backoff increment.
	DefaultRetryStep = time.Second

	// MaxResponseSize caps the body read from the backend.
	MaxResponseSize = 4 * 1024 * 1024

	// UserAgent identifies the client to the backend.
	UserAgent = "shopchat/0.1.0"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrServerError indicates the backend answered with an "error" field.
	ErrServerError = errors.New("chatapi: backend reported an error")

	// ErrMalformedResponse indicates the body was not a JSON object.
	ErrMalformedResponse = errors.New("chatapi: malformed response")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("chatapi: response too large")

	// ErrRetriesExhausted wraps the last attempt error once every attempt failed.
	ErrRetriesExhausted = errors.New("chatapi: retries exhausted")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error: %d", e.StatusCode)
	}
	return fmt.Sprintf("API error: %d: %s", e.StatusCode, e.Body)
}

// EventTracker receives per-attempt analytics events.
type EventTracker interface {
	Track(name string, data map[string]any)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat backend.
type Client struct {
	url        string
	httpClient *http.Client
	maxRetries int
	retryStep  time.Duration
	logger     zerolog.Logger
	tracker    EventTracker
	timer      backoff.Timer
	now        func() time.Time
}

// New creates a client for the endpoint at url. There is no request timeout
// unless WithTimeout is used.
func New(url string) *Client {
	return &Client{
		url:        strings.TrimSpace(url),
		httpClient: &http.Client{},
		maxRetries: DefaultMaxRetries,
		retryStep:  DefaultRetryStep,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithTimeout sets a per-attempt timeout. Zero disables it.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the total number of attempts per message.
func (c *Client) WithMaxRetries(n int) *Client {
	if n > 0 {
		c.maxRetries = n
	}
	return c
}

// WithRetryStep sets the linear backoff increment.
func (c *Client) WithRetryStep(step time.Duration) *Client {
	if step > 0 {
		c.retryStep = step
	}
	return c
}

// WithLogger sets the logger.
func (c *Client) WithLogger(l zerolog.Logger) *Client {
	c.logger = l.With().Str("component", "chatapi").Logger()
	return c
}

// WithTracker sets the analytics sink.
func (c *Client) WithTracker(t EventTracker) *Client {
	c.tracker = t
	return c
}

// WithTimer replaces the backoff timer. Tests use it to skip real sleeps.
func (c *Client) WithTimer(t backoff.Timer) *Client {
	c.timer = t
	return c
}

// WithClock replaces the clock used for client_timestamp.
func (c *Client) WithClock(now func() time.Time) *Client {
	if now != nil {
		c.now = now
	}
	return c
}

// URL returns the endpoint.
func (c *Client) URL() string {
	return c.url
}

// MaxRetries returns the configured number of attempts.
func (c *Client) MaxRetries() int {
	return c.maxRetries
}

// =============================================================================
// SEND
// =============================================================================

// Send posts message on behalf of userID, retrying with the configured policy.
func (c *Client) Send(ctx context.Context, message, userID string) (*ChatResponse, error) {
	return c.SendWithRetries(ctx, message, userID, c.maxRetries)
}

// SendWithRetries posts message with at most maxAttempts attempts. The n-th
// retry waits n times the retry step. When every attempt fails the error wraps
// both ErrRetriesExhausted and the last attempt error. Context cancellation
// stops immediately and returns the context error.
func (c *Client) SendWithRetries(ctx context.Context, message, userID string, maxAttempts int) (*ChatResponse, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		attempt int
		result  *ChatResponse
	)

	operation := func() error {
		attempt++
		resp, err := c.doRequest(ctx, message, userID)
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Str("message", message).Msg("API call failed")
			c.track("api_error", map[string]any{
				"message": message,
				"error":   err.Error(),
				"attempt": attempt,
			})
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}

		c.logger.Debug().Int("attempt", attempt).Str("message", message).Msg("API call succeeded")
		c.track("api_success", map[string]any{
			"message": message,
			"attempt": attempt,
		})
		result = resp
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Debug().Dur("wait", wait).Int("next_attempt", attempt+1).Msg("retrying")
	}

	err := backoff.RetryNotifyWithTimer(operation, retryPolicy(ctx, c.retryStep, maxAttempts), notify, c.timer)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		c.logger.Error().Err(err).Int("attempts", attempt).Msg("giving up")
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
	}
	return result, nil
}

// doRequest performs one attempt.
func (c *Client) doRequest(ctx context.Context, message, userID string) (*ChatResponse, error) {
	body, err := json.Marshal(NewChatRequest(message, userID, c.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(data)}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if chatResp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrServerError, chatResp.Error)
	}

	return &chatResp, nil
}

// readResponse reads the body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// snippet trims an error body for logging.
func snippet(body []byte) string {
	return util.TruncateWidth(util.SingleLine(string(body)), 200)
}

func (c *Client) track(name string, data map[string]any) {
	if c.tracker != nil {
		c.tracker.Track(name, data)
	}
}
