package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/paperdeck/internal/feed"
	"github.com/csheth/paperdeck/internal/llm"
	"github.com/csheth/paperdeck/internal/review"
)

const feedFetchTimeout = 30 * time.Second

type papersMsg struct {
	papers []feed.Paper
	err    error
}

type reviewStartedMsg struct {
	gen int
	ch  <-chan llm.Fragment
	err error
}

type reviewDeltaMsg struct {
	gen    int
	review review.Review
	err    error
	done   bool
}

type chatStartedMsg struct {
	gen int
	ch  <-chan llm.Fragment
	err error
}

type chatDeltaMsg struct {
	gen  int
	text string
	err  error
	done bool
}

type noteStartedMsg struct {
	gen int
	ch  <-chan llm.Fragment
	err error
}

type noteDeltaMsg struct {
	gen  int
	text string
	err  error
	done bool
}

type fullTextMsg struct {
	gen  int
	text string
	err  error
}

func loadPapersCmd(client *feed.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), feedFetchTimeout)
		defer cancel()
		papers, err := client.List(ctx)
		return papersMsg{papers: papers, err: err}
	}
}

// The start commands block on the backend's initial request (including its
// retry delays), so they run as tea.Cmds off the update loop. The streams
// themselves carry no timeout; the view's context cancels them.

func startReviewCmd(ctx context.Context, client llm.Client, gen int, paper feed.Paper) tea.Cmd {
	return func() tea.Msg {
		ch, err := client.StreamReview(ctx, paper.Title, paper.Abstract)
		return reviewStartedMsg{gen: gen, ch: ch, err: err}
	}
}

func listenReviewCmd(gen int, parser *review.Parser, ch <-chan llm.Fragment) tea.Cmd {
	return func() tea.Msg {
		frag, ok := <-ch
		if !ok {
			return reviewDeltaMsg{gen: gen, done: true}
		}
		if frag.Err != nil {
			return reviewDeltaMsg{gen: gen, err: frag.Err}
		}
		return reviewDeltaMsg{gen: gen, review: parser.Feed(frag.Text)}
	}
}

func startChatCmd(ctx context.Context, client llm.Client, gen int, title, contextText string, history []llm.Turn, question string) tea.Cmd {
	return func() tea.Msg {
		ch, err := client.StreamAnswer(ctx, title, contextText, history, question)
		return chatStartedMsg{gen: gen, ch: ch, err: err}
	}
}

func listenChatCmd(gen int, ch <-chan llm.Fragment) tea.Cmd {
	return func() tea.Msg {
		frag, ok := <-ch
		if !ok {
			return chatDeltaMsg{gen: gen, done: true}
		}
		if frag.Err != nil {
			return chatDeltaMsg{gen: gen, err: frag.Err}
		}
		return chatDeltaMsg{gen: gen, text: frag.Text}
	}
}

func startNoteCmd(ctx context.Context, client llm.Client, gen int, paper feed.Paper) tea.Cmd {
	return func() tea.Msg {
		ch, err := client.StreamNote(ctx, paper.Title, paper.Abstract, paper.Tags, paper.PaperURL)
		return noteStartedMsg{gen: gen, ch: ch, err: err}
	}
}

func listenNoteCmd(gen int, ch <-chan llm.Fragment) tea.Cmd {
	return func() tea.Msg {
		frag, ok := <-ch
		if !ok {
			return noteDeltaMsg{gen: gen, done: true}
		}
		if frag.Err != nil {
			return noteDeltaMsg{gen: gen, err: frag.Err}
		}
		return noteDeltaMsg{gen: gen, text: frag.Text}
	}
}

// fullTextCmd fetches the paper PDF text to enrich chat context. Failures
// are non-fatal; chat falls back to the abstract.
func fullTextCmd(ctx context.Context, gen int, paper feed.Paper) tea.Cmd {
	return func() tea.Msg {
		text, err := feed.FullText(ctx, paper)
		return fullTextMsg{gen: gen, text: text, err: err}
	}
}
