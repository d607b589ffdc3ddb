package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*openAIClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	cfg.HTTPClient = server.Client()

	return &openAIClient{
		client:     openai.NewClientWithConfig(cfg),
		model:      "test-model",
		retryDelay: time.Millisecond,
		logger:     zerolog.Nop(),
	}, server
}

func writeSSE(t *testing.T, w http.ResponseWriter, contents ...string) {
	t.Helper()
	w.Header().Set("Content-Type", "text/event-stream")
	for _, content := range contents {
		chunk := map[string]any{
			"choices": []map[string]any{
				{"delta": map[string]string{"content": content}},
			},
		}
		data, err := json.Marshal(chunk)
		if err != nil {
			t.Fatalf("marshal chunk: %v", err)
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func collect(t *testing.T, ch <-chan Fragment) (string, error) {
	t.Helper()
	var b strings.Builder
	for frag := range ch {
		if frag.Err != nil {
			return b.String(), frag.Err
		}
		b.WriteString(frag.Text)
	}
	return b.String(), nil
}

func TestStreamReviewDeliversFragments(t *testing.T) {
	var prompt string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stream   bool `json:"stream"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.Stream {
			t.Fatal("expected a streaming request")
		}
		prompt = req.Messages[len(req.Messages)-1].Content
		writeSSE(t, w, "SUMMARY: A", " paper.", "\nNOVELTY: It is new.")
	})

	ch, err := client.StreamReview(context.Background(), "Cool Paper", "We do things.")
	if err != nil {
		t.Fatalf("stream review failed: %v", err)
	}
	text, err := collect(t, ch)
	if err != nil {
		t.Fatalf("stream failed mid-flight: %v", err)
	}
	if text != "SUMMARY: A paper.\nNOVELTY: It is new." {
		t.Fatalf("unexpected assembled text: %q", text)
	}
	if !strings.Contains(prompt, "Paper title: Cool Paper") {
		t.Fatalf("prompt missing title: %s", prompt)
	}
	if !strings.Contains(prompt, "QUESTIONS") {
		t.Fatalf("prompt missing section directives: %s", prompt)
	}
}

func TestStreamRetriesTransientFailures(t *testing.T) {
	var requests int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
			return
		}
		writeSSE(t, w, "ok")
	})

	ch, err := client.StreamReview(context.Background(), "Paper", "abstract")
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if text, err := collect(t, ch); err != nil || text != "ok" {
		t.Fatalf("unexpected stream result: %q, %v", text, err)
	}
	if requests != 3 {
		t.Fatalf("expected 3 requests (2 failures + success), got %d", requests)
	}
}

func TestStreamGivesUpAfterRetriesExhaust(t *testing.T) {
	var requests int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	})

	if _, err := client.StreamReview(context.Background(), "Paper", "abstract"); err == nil {
		t.Fatal("expected failure after retries exhaust")
	}
	if requests != 4 {
		t.Fatalf("expected 4 attempts total, got %d", requests)
	}
}

func TestStreamDoesNotRetryPermanentFailures(t *testing.T) {
	var requests int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	if _, err := client.StreamReview(context.Background(), "Paper", "abstract"); err == nil {
		t.Fatal("expected immediate failure")
	}
	if requests != 1 {
		t.Fatalf("credential failures must not be retried, got %d requests", requests)
	}
}

func TestStreamSkipsChunksWithoutChoices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"still here\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	ch, err := client.StreamReview(context.Background(), "Paper", "abstract")
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	text, err := collect(t, ch)
	if err != nil {
		t.Fatalf("malformed chunk should not kill the stream: %v", err)
	}
	if text != "still here" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestStreamAnswerThreadsHistory(t *testing.T) {
	var roles []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		for _, m := range req.Messages {
			roles = append(roles, m.Role)
		}
		writeSSE(t, w, "answer")
	})

	history := []Turn{
		{Role: RoleUser, Content: "first question"},
		{Role: RoleAssistant, Content: "first answer"},
	}
	ch, err := client.StreamAnswer(context.Background(), "Paper", "abstract", history, "second question")
	if err != nil {
		t.Fatalf("stream answer failed: %v", err)
	}
	if _, err := collect(t, ch); err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	want := []string{"system", "user", "assistant", "user"}
	if len(roles) != len(want) {
		t.Fatalf("unexpected message count: %v", roles)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("message %d role = %s, want %s", i, roles[i], want[i])
		}
	}
}
