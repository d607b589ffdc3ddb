package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

type openAIClient struct {
	client     *openai.Client
	model      string
	retryDelay time.Duration
	logger     zerolog.Logger
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.model)
}

func (c *openAIClient) StreamReview(ctx context.Context, title, abstract string) (<-chan Fragment, error) {
	abstract = clipText(abstract, maxReviewChars)
	if abstract == "" {
		return nil, fmt.Errorf("paper abstract empty; cannot review")
	}
	return c.stream(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: reviewSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: buildReviewPrompt(title, abstract)},
	})
}

func (c *openAIClient) StreamAnswer(ctx context.Context, title, abstract string, history []Turn, question string) (<-chan Fragment, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: buildAnswerSystemPrompt(title, clipText(abstract, maxAnswerChars))},
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question})
	return c.stream(ctx, messages)
}

func (c *openAIClient) StreamNote(ctx context.Context, title, abstract string, tags []string, paperURL string) (<-chan Fragment, error) {
	abstract = clipText(abstract, maxNoteChars)
	if abstract == "" {
		return nil, fmt.Errorf("paper abstract empty; cannot draft note")
	}
	return c.stream(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: noteSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: buildNotePrompt(title, abstract, tags, paperURL)},
	})
}

// stream issues the completion request, retrying the initial call on
// transient failures, and fans the response deltas out on a channel. A
// mid-stream failure is delivered as the final fragment; chunks without
// choices are logged and skipped.
func (c *openAIClient) stream(ctx context.Context, messages []openai.ChatCompletionMessage) (<-chan Fragment, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
		Stream:      true,
	}

	var stream *openai.ChatCompletionStream
	err := withRetry(ctx, c.retryDelay, func() error {
		s, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			c.logger.Warn().Err(err).Str("model", c.model).Msg("completion request failed")
			return err
		}
		stream = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Fragment)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				c.logger.Error().Err(err).Msg("stream interrupted")
				select {
				case out <- Fragment{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				c.logger.Warn().Msg("skipping malformed chunk without choices")
				continue
			}
			text := resp.Choices[0].Delta.Content
			if text == "" {
				continue
			}
			select {
			case out <- Fragment{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
