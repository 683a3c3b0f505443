// Package aiclient wraps an OpenAI-compatible chat-completion endpoint with
// the retry, timeout and error-classification behavior the rest of the
// backend relies on.
package aiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Config controls the client. Zero fields fall back to the defaults below.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout is the wall-clock limit for one attempt.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// RetryDelay is the wait before the first retry; each further wait is
	// multiplied by RetryBackoff.
	RetryDelay   time.Duration
	RetryBackoff float64
	Temperature  float32
	MaxTokens    int
}

// Request is a single chat-completion call. Zero Temperature and MaxTokens
// use the client defaults.
type Request struct {
	Messages      []openai.ChatCompletionMessage
	Functions     []openai.FunctionDefinition
	ForceFunction string
	Temperature   float32
	MaxTokens     int
}

// Client dispatches chat completions with retries and timeouts. It is safe
// for concurrent use; the underlying session is created lazily and can be
// released with Close.
type Client struct {
	cfg Config

	mu       sync.Mutex
	api      *openai.Client
	httpClnt *http.Client
}

// New validates the configuration and returns a client. A missing API key
// is a hard failure so that misconfiguration surfaces at startup, not on
// the first user request.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-nano-2025-04-14"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2.0
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	return &Client{cfg: cfg}, nil
}

// session returns the lazily created API session, rebuilding it when the
// client was closed earlier.
func (c *Client) session() *openai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api == nil {
		c.httpClnt = &http.Client{}
		conf := openai.DefaultConfig(c.cfg.APIKey)
		conf.BaseURL = c.cfg.BaseURL
		conf.HTTPClient = c.httpClnt
		c.api = openai.NewClientWithConfig(conf)
	}
	return c.api
}

// Close releases idle connections. The client stays usable; the next call
// recreates the session.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClnt != nil {
		c.httpClnt.CloseIdleConnections()
	}
	c.api = nil
	c.httpClnt = nil
}

// Complete dispatches one chat completion, retrying transient failures with
// exponential backoff. Non-transient failures return immediately. The
// returned error always wraps a *Failure describing the last attempt.
func (c *Client) Complete(ctx context.Context, req Request) (*openai.ChatCompletionResponse, error) {
	delay := c.cfg.RetryDelay
	var last *Failure
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("ai request attempt %d/%d failed (%s), retrying in %s", attempt, c.cfg.MaxRetries+1, last.Message, delay)
			select {
			case <-ctx.Done():
				return nil, &Failure{Kind: FailureTimeout, Message: "request canceled while waiting to retry", cause: ctx.Err()}
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.cfg.RetryBackoff)
		}

		resp, fail := c.attempt(ctx, req)
		if fail == nil {
			return resp, nil
		}
		last = fail
		if !fail.Transient() {
			return nil, fail
		}
	}
	return nil, fmt.Errorf("ai request failed after %d attempts: %w", c.cfg.MaxRetries+1, last)
}

func (c *Client) attempt(ctx context.Context, req Request) (*openai.ChatCompletionResponse, *Failure) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}

	oreq := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	if len(req.Functions) > 0 {
		oreq.Functions = req.Functions
		if req.ForceFunction != "" {
			oreq.FunctionCall = map[string]string{"name": req.ForceFunction}
		}
	}

	cctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.session().CreateChatCompletion(cctx, oreq)
	if err != nil {
		return nil, c.classify(err)
	}
	return &resp, nil
}

// classify maps transport errors onto the failure taxonomy. Upstream API
// errors keep their HTTP status; everything else is sorted into timeout,
// undecodable-body or network buckets.
func (c *Client) classify(err error) *Failure {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Failure{
			Kind:    FailureAPI,
			Status:  apiErr.HTTPStatusCode,
			Message: describeStatus(apiErr.HTTPStatusCode, apiErr.Message),
			cause:   err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Failure{
			Kind:    FailureAPI,
			Status:  reqErr.HTTPStatusCode,
			Message: describeStatus(reqErr.HTTPStatusCode, ""),
			cause:   err,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{
			Kind:    FailureTimeout,
			Message: fmt.Sprintf("API request timed out after %s", c.cfg.Timeout),
			cause:   err,
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &Failure{
				Kind:    FailureTimeout,
				Message: fmt.Sprintf("API request timed out after %s", c.cfg.Timeout),
				cause:   err,
			}
		}
		return &Failure{
			Kind:    FailureNetwork,
			Message: fmt.Sprintf("Network error during API request: %v", err),
			cause:   err,
		}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Failure{
			Kind:    FailureInvalidResponse,
			Message: fmt.Sprintf("Invalid JSON response from API: %v", err),
			cause:   err,
		}
	}
	return &Failure{
		Kind:    FailureNetwork,
		Message: fmt.Sprintf("Network error during API request: %v", err),
		cause:   err,
	}
}
