package llm

import (
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 503}, true},
		{"bad credentials", &openai.APIError{HTTPStatusCode: 401}, false},
		{"invalid request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"no response", &openai.RequestError{HTTPStatusCode: 0, Err: errors.New("dial tcp: connection refused")}, true},
		{"gateway error", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, true},
		{"connection refused text", errors.New("dial tcp 127.0.0.1:443: connect: connection refused"), true},
		{"timeout text", fmt.Errorf("request failed: %w", errors.New("context deadline exceeded (Client.Timeout)")), true},
		{"plain failure", errors.New("empty prompt"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
