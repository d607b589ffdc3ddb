// Package llm streams generated text from an OpenAI-compatible backend for
// the three paperdeck prompt flows: paper reviews, chat answers, and note
// drafts.
package llm

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel = "gpt-4o-mini"
	// Prompt context is clipped well below typical context windows to leave
	// headroom for the generated reply.
	maxReviewChars = 24_000
	maxAnswerChars = 60_000
	maxNoteChars   = 24_000
)

const (
	retryMax          = 3
	retryInitialDelay = 1000 * time.Millisecond
)

// Fragment is one increment of generated text. A non-nil Err is terminal:
// the stream delivers it as its final fragment and closes.
type Fragment struct {
	Text string
	Err  error
}

// Turn is one finalized transcript entry passed back to the backend as chat
// history.
type Turn struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client exposes the streaming generation flows. Every method retries the
// initial request on transient network failures before handing back the
// fragment channel; mid-stream delivery is never retried.
type Client interface {
	StreamReview(ctx context.Context, title, abstract string) (<-chan Fragment, error)
	StreamAnswer(ctx context.Context, title, abstract string, history []Turn, question string) (<-chan Fragment, error)
	StreamNote(ctx context.Context, title, abstract string, tags []string, paperURL string) (<-chan Fragment, error)
	Name() string
}

// Config describes how to build a backend client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  zerolog.Logger
}

// NewFromEnv builds a client from config with OPENAI_* environment fallbacks.
// A missing credential is a hard error; callers run with AI features disabled
// for the rest of the session.
func NewFromEnv(cfg Config) (Client, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OPENAI_MODEL"); env != "" {
			model = env
		} else {
			model = defaultModel
		}
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	} else if env := os.Getenv("OPENAI_BASE_URL"); env != "" {
		clientCfg.BaseURL = env
	}

	return &openAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		retryDelay: retryInitialDelay,
		logger:     cfg.Logger,
	}, nil
}
