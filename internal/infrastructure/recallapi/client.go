// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package recallapi implements the meeting-bot provider interface against
// the Recall REST API.
package recallapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
)

const (
	// BaseURL is the default base URL for the Recall API.
	BaseURL = "https://us-west-2.recall.ai"
	// DefaultClientTimeout is the default HTTP client timeout for Recall API requests
	DefaultClientTimeout = 30 * time.Second
	// Default retry configuration
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Config holds the configuration for the Recall client
type Config struct {
	APIKey string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: retry configuration
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Client represents a Recall API client
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new Recall API client
func NewClient(config Config) *Client {
	// Set defaults if not provided
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// shouldRetry determines if an error or HTTP status code should be retried
func shouldRetry(statusCode int, err error) bool {
	// Don't retry if context was cancelled
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Retry on network/connection errors
	if err != nil {
		return true
	}

	// Retry on server errors (5xx)
	if statusCode >= 500 && statusCode < 600 {
		return true
	}

	// Retry on rate limiting (429)
	if statusCode == http.StatusTooManyRequests {
		return true
	}

	// Don't retry on client errors (4xx)
	return false
}

// calculateBackoff calculates the backoff duration for a retry attempt with jitter
func (c *Client) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return c.config.InitialBackoff
	}

	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > c.config.MaxBackoff {
		backoff = float64(c.config.MaxBackoff)
	}

	// Add jitter (±25% of backoff duration) to prevent thundering herd
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)
	if backoffWithJitter < c.config.InitialBackoff {
		backoffWithJitter = c.config.InitialBackoff
	}

	return backoffWithJitter
}

// doRequest performs an authenticated HTTP request to the Recall API with
// retry logic. The returned body is the fully-read response payload.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	url := c.config.BaseURL + path
	var lastErr error
	var lastStatus int
	var lastBody []byte

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Token "+c.config.APIKey)

		slog.DebugContext(ctx, "making Recall API request",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.config.MaxRetries,
		)

		startTime := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(startTime)

		if err == nil {
			respBody, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				err = readErr
			} else {
				lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
				if !shouldRetry(resp.StatusCode, nil) {
					slog.DebugContext(ctx, "Recall API request completed",
						"method", method,
						"path", path,
						"status", resp.StatusCode,
						"duration", duration.String(),
						"attempt", attempt+1,
					)
					return resp.StatusCode, respBody, nil
				}
			}
		}
		if err != nil {
			lastErr = err
			lastStatus, lastBody = 0, nil
			if !shouldRetry(0, err) {
				slog.ErrorContext(ctx, "Recall API request failed (not retryable)",
					"method", method,
					"path", path,
					"duration", duration.String(),
					"attempt", attempt+1,
					logging.ErrKey, err)
				break
			}
		}

		if attempt < c.config.MaxRetries {
			backoff := c.calculateBackoff(attempt)
			slog.WarnContext(ctx, "Recall API request failed, retrying",
				"method", method,
				"path", path,
				"status", lastStatus,
				"duration", duration.String(),
				"attempt", attempt+1,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff.String(),
				logging.ErrKey, lastErr)

			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(backoff):
			}
		} else {
			slog.ErrorContext(ctx, "Recall API request failed after all retries",
				"method", method,
				"path", path,
				"status", lastStatus,
				"attempts", attempt+1,
				"max_retries", c.config.MaxRetries,
				logging.ErrKey, lastErr,
				logging.PriorityCritical())
		}
	}

	if lastErr != nil {
		return 0, nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
	}
	return lastStatus, lastBody, nil
}

// parseErrorResponse attempts to parse a Recall API error response
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Detail != "" {
			return fmt.Errorf("recall API error (status %d): %s", statusCode, errResp.Detail)
		}
		if errResp.Message != "" {
			return fmt.Errorf("recall API error (status %d): %s", statusCode, errResp.Message)
		}
	}
	return fmt.Errorf("recall API error (status %d): %s", statusCode, string(body))
}
