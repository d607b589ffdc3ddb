// Package chat owns the question/answer transcript for one paper detail view.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/csheth/paperdeck/internal/llm"
)

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Pending marks the single in-flight
// assistant reply, grown fragment by fragment until the stream finishes. The
// transcript is append-only apart from that one message.
type Message struct {
	Role    Role
	Content string
	Pending bool
}

// Session holds the transcript and drives reply streams for one paper. Each
// detail view owns its own session; sessions are not shared across views.
type Session struct {
	Messages []Message

	title    string
	abstract string
	client   llm.Client
}

// NewSession builds a session grounded in the paper's title and abstract.
func NewSession(client llm.Client, title, abstract string) *Session {
	return &Session{title: title, abstract: abstract, client: client}
}

// Begin validates the question and appends it together with a pending
// assistant message, without contacting the backend. Callers that must not
// block (a UI update loop) use Begin plus History and issue the stream
// request themselves.
func (s *Session) Begin(question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return errors.New("question cannot be empty")
	}
	if s.InFlight() {
		return errors.New("a reply is already streaming")
	}
	s.Messages = append(s.Messages,
		Message{Role: RoleUser, Content: question},
		Message{Role: RoleAssistant, Pending: true},
	)
	return nil
}

// Ask appends the question and a pending assistant message, then starts the
// reply stream. If the initial request fails (after the client's retries),
// the pending message is failed in place and the error is returned.
func (s *Session) Ask(ctx context.Context, question string) (<-chan llm.Fragment, error) {
	question = strings.TrimSpace(question)
	history := s.turns()
	if err := s.Begin(question); err != nil {
		return nil, err
	}

	ch, err := s.client.StreamAnswer(ctx, s.title, s.abstract, history, question)
	if err != nil {
		s.Fail(err)
		return nil, err
	}
	return ch, nil
}

// History returns the finalized transcript as backend turns.
func (s *Session) History() []llm.Turn {
	return s.turns()
}

// Advance appends streamed text to the pending assistant reply.
func (s *Session) Advance(text string) {
	if m := s.pending(); m != nil {
		m.Content += text
	}
}

// Finalize clears the pending flag once the stream completes.
func (s *Session) Finalize() {
	if m := s.pending(); m != nil {
		m.Pending = false
	}
}

// Fail records the error text on the assistant message and clears the
// pending flag. Text streamed before the failure stays visible above the
// error line; nothing is rolled back.
func (s *Session) Fail(err error) {
	m := s.pending()
	if m == nil {
		return
	}
	if m.Content == "" {
		m.Content = err.Error()
	} else {
		m.Content += "\n\n" + err.Error()
	}
	m.Pending = false
}

// InFlight reports whether an assistant reply is currently streaming.
func (s *Session) InFlight() bool {
	return s.pending() != nil
}

func (s *Session) pending() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	last := &s.Messages[len(s.Messages)-1]
	if last.Pending {
		return last
	}
	return nil
}

// turns maps the finalized transcript into history for the backend.
func (s *Session) turns() []llm.Turn {
	turns := make([]llm.Turn, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Pending {
			continue
		}
		role := llm.RoleUser
		if m.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		turns = append(turns, llm.Turn{Role: role, Content: m.Content})
	}
	return turns
}
