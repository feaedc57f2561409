package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/tmalunga/syllabussense/internal/config"
)

const (
	// DefaultHTTPTimeout is used when the model config does not set one.
	DefaultHTTPTimeout = 120 * time.Second
	// DefaultBaseRetryDelay is the base delay for exponential backoff.
	DefaultBaseRetryDelay = 2 * time.Second
	// rateLimitBackoffBase grows backoff faster for HTTP 429 (3^n).
	rateLimitBackoffBase = 3
)

// APIError represents an error returned by the API.
type APIError struct {
	Message    string
	StatusCode int
	Type       string
	Code       string
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}

// Client handles HTTP requests to OpenAI-compatible chat completion
// endpoints, with per-model rate limiting and retry with backoff.
type Client struct {
	httpClient     *http.Client
	limiters       *RateLimiterPool
	logger         *slog.Logger
	baseRetryDelay time.Duration
}

// NewClient creates a new API client.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: DefaultHTTPTimeout},
		limiters:       NewRateLimiterPool(),
		logger:         logger,
		baseRetryDelay: DefaultBaseRetryDelay,
	}
}

// ChatCompletion sends a chat completion request to the configured model,
// retrying transient failures with exponential backoff.
func (c *Client) ChatCompletion(
	ctx context.Context,
	modelCfg config.ModelConfig,
	apiKey string,
	messages []Message,
) (*ChatCompletionResponse, error) {
	modelID := fmt.Sprintf("%s:%s", modelCfg.BaseURL, modelCfg.ModelName)
	if err := c.limiters.Wait(ctx, modelID, modelCfg.RateLimitPerMinute); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req := ChatCompletionRequest{
		Model:       modelCfg.ModelName,
		Messages:    messages,
		Temperature: modelCfg.Temperature,
		TopP:        modelCfg.TopP,
		MaxTokens:   modelCfg.MaxOutputTokens,
		N:           1,
	}
	if modelCfg.UseJSONMode {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	maxRetries := modelCfg.MaxRetries
	unlimited := maxRetries < 0

	var lastErr error
	for attempt := 0; unlimited || attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			sleep := c.backoff(attempt, lastErr)
			c.logger.Warn("retrying API request",
				"attempt", attempt,
				"backoff", sleep,
				"model", modelCfg.ModelName,
				"error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sleep):
			}
		}

		resp, err := c.doRequest(ctx, modelCfg, apiKey, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// backoff computes the delay before the given retry attempt, with jitter.
// Rate limit responses back off more aggressively.
func (c *Client) backoff(attempt int, lastErr error) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseRetryDelay

	var apiErr *APIError
	if errors.As(lastErr, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		d = time.Duration(math.Pow(rateLimitBackoffBase, float64(attempt))) * c.baseRetryDelay
	}

	jitter := time.Duration(float64(d) * 0.1 * (2*float64(time.Now().UnixNano()%100)/100 - 1))
	return d + jitter
}

func (c *Client) doRequest(
	ctx context.Context,
	modelCfg config.ModelConfig,
	apiKey string,
	req ChatCompletionRequest,
) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := modelCfg.BaseURL
	if endpoint[len(endpoint)-1] != '/' {
		endpoint += "/"
	}
	endpoint += "chat/completions"

	if modelCfg.HTTPTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(modelCfg.HTTPTimeoutSeconds)*time.Second)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	} else {
		c.logger.Warn("API request without key", "endpoint", endpoint)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Transport failures get retried; cancellation does not.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
		}
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			Message:    fmt.Sprintf("API request failed with status %d: %s", httpResp.StatusCode, string(respBody)),
			StatusCode: httpResp.StatusCode,
			Retryable:  isStatusRetryable(httpResp.StatusCode),
		}
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			apiErr.Message = errResp.Error.Message
			apiErr.Type = errResp.Error.Type
			apiErr.Code = errResp.Error.Code
		}
		return nil, apiErr
	}

	var resp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned in response")
	}

	return &resp, nil
}

func isStatusRetryable(statusCode int) bool {
	// Rate limits and server errors are worth another attempt.
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
