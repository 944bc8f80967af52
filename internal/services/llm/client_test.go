package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": content},
			},
		},
	}
}

func TestClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Fatalf("authorization header %q", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Model != "demo-model" || len(payload.Messages) != 2 {
			t.Fatalf("unexpected request payload %+v", payload)
		}
		if err := json.NewEncoder(w).Encode(completionBody("Olá mundo")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	got, err := client.Complete(context.Background(), "You translate text.", "hello world")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "Olá mundo" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestClientCompleteRequiresPromptsAndKey(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://unused", Model: "demo"})
	if _, err := client.Complete(context.Background(), "", "text"); err == nil {
		t.Fatal("expected error without system prompt")
	}
	if _, err := client.Complete(context.Background(), "system", " "); err == nil {
		t.Fatal("expected error without user prompt")
	}
	keyless := NewClient(Config{BaseURL: "http://unused", Model: "demo"})
	if _, err := keyless.Complete(context.Background(), "system", "text"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestClientCompleteDeltaFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"delta": map[string]any{"content": "streamed text"},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	got, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "streamed text" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(completionBody("recovered"))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithRetryMaxAttempts(3),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	got, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("unexpected content %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(slept) != 2 || slept[1] <= slept[0] {
		t.Fatalf("expected growing backoff, got %v", slept)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"},
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) {}))

	if _, err := client.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("4xx must not retry, got %d calls", calls)
	}
}

func TestClientHonorsRetryAfter(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(completionBody("after limit"))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	if _, err := client.Complete(context.Background(), "system", "user"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected one 2s sleep from Retry-After, got %v", slept)
	}
}

func TestClientEmptyContentError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"message":       map[string]any{"content": "", "refusal": "cannot comply"},
					"finish_reason": "content_filter",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithRetryMaxAttempts(2),
		WithSleeper(func(time.Duration) {}))

	_, err := client.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error for empty content")
	}
	if !strings.Contains(err.Error(), "cannot comply") {
		t.Fatalf("refusal missing from error: %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("5"); !ok || d != 5*time.Second {
		t.Fatalf("got %v %v", d, ok)
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Fatal("empty header must not parse")
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative header must not parse")
	}
}
