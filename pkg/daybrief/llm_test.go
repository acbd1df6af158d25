package daybrief

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/openai/openai-go"
)

func TestDedupeModels(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"duplicates removed", []string{"a", "b", "a", "b"}, []string{"a", "b"}},
		{"whitespace trimmed", []string{" a ", "", "  "}, []string{"a"}},
		{"order preserved", []string{"c", "a", "b", "a"}, []string{"c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeModels(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestIsRetryableCompletionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"http 404", &openai.Error{StatusCode: 404}, true},
		{"http 503", &openai.Error{StatusCode: 503}, true},
		{"http 400", &openai.Error{StatusCode: 400}, false},
		{"http 401", &openai.Error{StatusCode: 401}, false},
		{"connection refused text", errors.New("dial tcp: connection refused"), true},
		{"plain failure", errors.New("bad prompt"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableCompletionError(tt.err); got != tt.want {
				t.Fatalf("isRetryableCompletionError = %v, want %v", got, tt.want)
			}
		})
	}
}

// chatStub is an OpenAI-compatible chat completions endpoint that records the
// model of each request and fails until the configured attempt.
type chatStub struct {
	mu          sync.Mutex
	models      []string
	failFirstN  int
	failStatus  int
	replyText   string
	callCounter int
}

func (s *chatStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		s.callCounter++
		call := s.callCounter
		s.models = append(s.models, body.Model)
		s.mu.Unlock()

		if call <= s.failFirstN {
			status := s.failStatus
			if status == 0 {
				status = http.StatusInternalServerError
			}
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"stub failure"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, s.replyText)
	}
}

func (s *chatStub) requestedModels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.models...)
}

func TestCompleteAutomatedWalksFallbackOrder(t *testing.T) {
	stub := &chatStub{failFirstN: 2, replyText: "digest text"}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	cc := newCompletionClient(completionClientOptions{
		OpenAIAPIKey:  "test",
		OpenAIBaseURL: server.URL + "/v1",
	})

	// Duplicates collapse; the third attempt wraps back to the first model.
	text, err := cc.CompleteAutomated(context.Background(), "prompt", "system", []string{"gpt-a", "gpt-a", "gpt-b"})
	if err != nil {
		t.Fatalf("CompleteAutomated: %v", err)
	}
	if text != "digest text" {
		t.Fatalf("text = %q", text)
	}

	models := stub.requestedModels()
	want := []string{"gpt-a", "gpt-b", "gpt-a"}
	if len(models) != len(want) {
		t.Fatalf("models = %v, want %v", models, want)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Fatalf("models = %v, want %v", models, want)
		}
	}
}

func TestCompleteAutomatedOneRequestPerAttempt(t *testing.T) {
	// A retryable status must surface to the fallback walk, not be retried
	// on the same model underneath it.
	stub := &chatStub{failFirstN: 1, failStatus: http.StatusServiceUnavailable, replyText: "fallback text"}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	cc := newCompletionClient(completionClientOptions{
		OpenAIAPIKey:  "test",
		OpenAIBaseURL: server.URL + "/v1",
	})

	text, err := cc.CompleteAutomated(context.Background(), "prompt", "system", []string{"gpt-a", "gpt-b"})
	if err != nil {
		t.Fatalf("CompleteAutomated: %v", err)
	}
	if text != "fallback text" {
		t.Fatalf("text = %q", text)
	}

	models := stub.requestedModels()
	if len(models) != 2 || models[0] != "gpt-a" || models[1] != "gpt-b" {
		t.Fatalf("models = %v, want [gpt-a gpt-b]", models)
	}
}

func TestCompleteAutomatedExhaustionReturnsSentinel(t *testing.T) {
	stub := &chatStub{failFirstN: 100}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	cc := newCompletionClient(completionClientOptions{
		OpenAIAPIKey:  "test",
		OpenAIBaseURL: server.URL + "/v1",
	})

	_, err := cc.CompleteAutomated(context.Background(), "prompt", "system", []string{"gpt-a"})
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
	if !IsErrorCode(err, ErrCodeCompletion) {
		t.Fatalf("expected COMPLETION_FAILED code, got %v", err)
	}
	if got := len(stub.requestedModels()); got != completionMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", completionMaxAttempts, got)
	}
}

func TestCompleteInteractiveFailsFastOnNonRetryable(t *testing.T) {
	stub := &chatStub{failFirstN: 100, failStatus: http.StatusBadRequest}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	cc := newCompletionClient(completionClientOptions{
		OpenAIAPIKey:  "test",
		OpenAIBaseURL: server.URL + "/v1",
	})

	_, err := cc.CompleteInteractive(context.Background(), "prompt", "system", []string{"gpt-a"})
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
	// A 400 is not retryable: exactly one request.
	if got := len(stub.requestedModels()); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestCompleteInteractiveRetriesOn503(t *testing.T) {
	stub := &chatStub{failFirstN: 1, failStatus: http.StatusServiceUnavailable, replyText: "recovered"}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	cc := newCompletionClient(completionClientOptions{
		OpenAIAPIKey:  "test",
		OpenAIBaseURL: server.URL + "/v1",
	})

	text, err := cc.CompleteInteractive(context.Background(), "prompt", "system", []string{"gpt-a", "gpt-b"})
	if err != nil {
		t.Fatalf("CompleteInteractive: %v", err)
	}
	if text != "recovered" {
		t.Fatalf("text = %q", text)
	}

	// Interactive retries stay on the primary model.
	models := stub.requestedModels()
	if len(models) != 2 || models[0] != "gpt-a" || models[1] != "gpt-a" {
		t.Fatalf("models = %v", models)
	}
}

func TestCompleteWithNoModels(t *testing.T) {
	cc := newCompletionClient(completionClientOptions{})
	if _, err := cc.CompleteAutomated(context.Background(), "p", "s", nil); !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
	if _, err := cc.CompleteInteractive(context.Background(), "p", "s", []string{" "}); !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
}
