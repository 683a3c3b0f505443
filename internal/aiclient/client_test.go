package aiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"lingo-ai/internal/aiclient"
)

func completionBody(content string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` +
		strconv.Quote(content) + `},"finish_reason":"stop"}]}`
}

func userMessages(text string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: text}}
}

func newClient(t *testing.T, cfg aiclient.Config) *aiclient.Client {
	t.Helper()
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	client, err := aiclient.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := aiclient.New(aiclient.Config{})
	if !errors.Is(err, aiclient.ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCompleteSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("xin chào")))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{BaseURL: ts.URL + "/v1"})
	defer client.Close()

	resp, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("hello")})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "xin chào" {
		t.Errorf("Expected the stubbed content, got %+v", resp.Choices)
	}
}

func TestCompleteRequestShape(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Functions []struct {
			Name string `json:"name"`
		} `json:"functions"`
		FunctionCall map[string]string `json:"function_call"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("ok")))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{BaseURL: ts.URL + "/v1", Model: "test-model"})
	defer client.Close()

	_, err := client.Complete(context.Background(), aiclient.Request{
		Messages: userMessages("make a flashcard"),
		Functions: []openai.FunctionDefinition{{
			Name:       "create_flashcard",
			Parameters: map[string]any{"type": "object"},
		}},
		ForceFunction: "create_flashcard",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if got.Model != "test-model" {
		t.Errorf("Expected model 'test-model', got '%s'", got.Model)
	}
	if math.Abs(got.Temperature-0.7) > 1e-6 {
		t.Errorf("Expected default temperature 0.7, got %v", got.Temperature)
	}
	if got.MaxTokens != 500 {
		t.Errorf("Expected default max_tokens 500, got %d", got.MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("Expected one user message, got %+v", got.Messages)
	}
	if len(got.Functions) != 1 || got.Functions[0].Name != "create_flashcard" {
		t.Errorf("Expected the create_flashcard schema on the wire, got %+v", got.Functions)
	}
	if got.FunctionCall["name"] != "create_flashcard" {
		t.Errorf("Expected forced function_call, got %+v", got.FunctionCall)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{
		BaseURL:    ts.URL + "/v1",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	defer client.Close()

	_, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("hi")})
	if err == nil {
		t.Fatal("Expected an error after exhausting retries")
	}
	if n := calls.Load(); n != 4 {
		t.Errorf("Expected 4 attempts (1 + 3 retries), got %d", n)
	}

	var fail *aiclient.Failure
	if !errors.As(err, &fail) {
		t.Fatalf("Expected a *Failure in the chain, got %T: %v", err, err)
	}
	if fail.Kind != aiclient.FailureAPI || fail.Status != http.StatusInternalServerError {
		t.Errorf("Expected API failure with status 500, got kind=%d status=%d", fail.Kind, fail.Status)
	}
	if !fail.Transient() {
		t.Error("Expected a 500 failure to be transient")
	}
	want := "ai request failed after 4 attempts: Internal server error - try again later: upstream exploded"
	if err.Error() != want {
		t.Errorf("Expected error message %q, got %q", want, err.Error())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{
		BaseURL:    ts.URL + "/v1",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	defer client.Close()

	_, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("hi")})
	if err == nil {
		t.Fatal("Expected an error for a 400 response")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("Expected a single attempt for a client error, got %d", n)
	}

	var fail *aiclient.Failure
	if !errors.As(err, &fail) {
		t.Fatalf("Expected a *Failure, got %T: %v", err, err)
	}
	if fail.Status != http.StatusBadRequest || fail.Transient() {
		t.Errorf("Expected a non-transient 400 failure, got status=%d transient=%v", fail.Status, fail.Transient())
	}
	want := "Bad request - invalid parameters: model not found"
	if fail.Message != want {
		t.Errorf("Expected message %q, got %q", want, fail.Message)
	}
}

func TestUnknownStatusMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{BaseURL: ts.URL + "/v1"})
	defer client.Close()

	_, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("hi")})

	var fail *aiclient.Failure
	if !errors.As(err, &fail) {
		t.Fatalf("Expected a *Failure, got %T: %v", err, err)
	}
	if fail.Message != "API error (status 418)" {
		t.Errorf("Expected the generic status message, got %q", fail.Message)
	}
}

func TestInvalidResponseBodyNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("this is not json"))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{
		BaseURL:    ts.URL + "/v1",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	defer client.Close()

	_, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("hi")})
	if err == nil {
		t.Fatal("Expected an error for an undecodable 200 body")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("Expected a single attempt for a malformed body, got %d", n)
	}

	var fail *aiclient.Failure
	if !errors.As(err, &fail) {
		t.Fatalf("Expected a *Failure, got %T: %v", err, err)
	}
	if fail.Kind != aiclient.FailureInvalidResponse {
		t.Errorf("Expected FailureInvalidResponse, got kind=%d", fail.Kind)
	}
	if !strings.HasPrefix(fail.Message, "Invalid JSON response from API:") {
		t.Errorf("Expected the invalid-JSON message, got %q", fail.Message)
	}
	if fail.Transient() {
		t.Error("A malformed body must not be retried")
	}
}

func TestTimeoutRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(completionBody("too late")))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{
		BaseURL:    ts.URL + "/v1",
		Timeout:    20 * time.Millisecond,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	defer client.Close()

	_, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("hi")})
	if err == nil {
		t.Fatal("Expected an error when every attempt times out")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("Expected 2 attempts, got %d", n)
	}

	var fail *aiclient.Failure
	if !errors.As(err, &fail) {
		t.Fatalf("Expected a *Failure, got %T: %v", err, err)
	}
	if fail.Kind != aiclient.FailureTimeout {
		t.Errorf("Expected FailureTimeout, got kind=%d", fail.Kind)
	}
	if fail.Message != "API request timed out after 20ms" {
		t.Errorf("Expected the timeout message, got %q", fail.Message)
	}
	if !fail.Transient() {
		t.Error("Timeouts must be transient")
	}
}

func TestNetworkErrorKind(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := ts.URL
	ts.Close() // nothing listens here anymore

	client := newClient(t, aiclient.Config{BaseURL: base + "/v1", RetryDelay: time.Millisecond})
	defer client.Close()

	_, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("hi")})

	var fail *aiclient.Failure
	if !errors.As(err, &fail) {
		t.Fatalf("Expected a *Failure, got %T: %v", err, err)
	}
	if fail.Kind != aiclient.FailureNetwork {
		t.Errorf("Expected FailureNetwork, got kind=%d", fail.Kind)
	}
	if !strings.HasPrefix(fail.Message, "Network error during API request:") {
		t.Errorf("Expected the network message, got %q", fail.Message)
	}
	if !fail.Transient() {
		t.Error("Connection failures must be transient")
	}
}

func TestCancelWhileWaitingToRetry(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{
		BaseURL:    ts.URL + "/v1",
		MaxRetries: 2,
		RetryDelay: 5 * time.Second,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, aiclient.Request{Messages: userMessages("hi")})
	if err == nil {
		t.Fatal("Expected an error when the context dies mid-wait")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("Expected the retry wait to be abandoned after 1 attempt, got %d", n)
	}

	var fail *aiclient.Failure
	if !errors.As(err, &fail) {
		t.Fatalf("Expected a *Failure, got %T: %v", err, err)
	}
	if fail.Message != "request canceled while waiting to retry" {
		t.Errorf("Expected the cancel message, got %q", fail.Message)
	}
}

func TestCloseThenReuse(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("ok")))
	}))
	defer ts.Close()

	client := newClient(t, aiclient.Config{BaseURL: ts.URL + "/v1"})

	if _, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("one")}); err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	client.Close()
	if _, err := client.Complete(context.Background(), aiclient.Request{Messages: userMessages("two")}); err != nil {
		t.Fatalf("Complete after Close: %v", err)
	}
	client.Close()

	if n := calls.Load(); n != 2 {
		t.Errorf("Expected 2 served requests, got %d", n)
	}
}
