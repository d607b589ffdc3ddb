// Package tui renders the paper browser: a filterable list of the daily
// papers and a detail view with a streamed AI review, chat, and note drafts.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/csheth/paperdeck/internal/browse"
	"github.com/csheth/paperdeck/internal/chat"
	"github.com/csheth/paperdeck/internal/feed"
	"github.com/csheth/paperdeck/internal/llm"
	"github.com/csheth/paperdeck/internal/review"
)

// Config wires the runtime pieces into the TUI. LLM may be nil, in which
// case the review, chat, and note features are disabled.
type Config struct {
	Feed   *feed.Client
	LLM    llm.Client
	Theme  Theme
	Logger zerolog.Logger
}

type stage int

const (
	stageLoading stage = iota
	stageList
	stageDetail
)

type focusArea int

const (
	focusList focusArea = iota
	focusFilter
	focusChat
)

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	chromeHeight              = 12
)

// New builds the initial model.
func New(config Config) tea.Model {
	filterInput := textinput.New()
	filterInput.Placeholder = "filter by title, abstract, or author"
	filterInput.CharLimit = 120
	filterInput.Width = 50

	chatInput := textinput.New()
	chatInput.Placeholder = "ask about this paper"
	chatInput.CharLimit = 400
	chatInput.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)

	return &model{
		config:      config,
		theme:       config.Theme,
		styles:      config.Theme.Styles(),
		stage:       stageLoading,
		query:       browse.Query{Sort: browse.SortDateDesc},
		tagIdx:      -1,
		filterInput: filterInput,
		chatInput:   chatInput,
		spinner:     spin,
		viewport:    vp,
		infoMessage: "Fetching the daily papers…",
	}
}

type model struct {
	config Config
	theme  Theme
	styles styles

	stage stage
	focus focusArea

	papers []feed.Paper
	view   []feed.Paper
	tags   []string
	tagIdx int
	query  browse.Query
	cursor int

	filterInput textinput.Model
	chatInput   textinput.Model
	spinner     spinner.Model
	viewport    viewport.Model

	detail  *detailState
	viewGen int

	width  int
	height int

	infoMessage  string
	errorMessage string
}

// detailState owns the per-view streams. A fresh value is built every time a
// paper is opened; the generation counter keeps late fragments from an
// abandoned view out of the model.
type detailState struct {
	paper  feed.Paper
	gen    int
	ctx    context.Context
	cancel context.CancelFunc

	parser        *review.Parser
	review        review.Review
	reviewCh      <-chan llm.Fragment
	reviewLoading bool
	reviewErr     string

	session     *chat.Session
	chatCh      <-chan llm.Fragment
	chatLoading bool

	fullText string

	noteCh      <-chan llm.Fragment
	noteText    string
	noteLoading bool
	noteErr     string
	showNote    bool
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(loadPapersCmd(m.config.Feed), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		width := msg.Width - viewportHorizontalPadding
		if width < minViewportWidth {
			width = minViewportWidth
		}
		m.viewport.Width = width
		height := msg.Height - chromeHeight
		if height < 8 {
			height = 8
		}
		m.viewport.Height = height
		m.syncDetailViewport()
		return m, nil
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.stage == stageDetail {
			return m.handleDetailKey(msg)
		}
		return m.handleListKey(msg)
	case tea.MouseMsg:
		if m.stage == stageDetail {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case papersMsg:
		return m.handlePapers(msg)
	case reviewStartedMsg:
		return m.handleReviewStarted(msg)
	case reviewDeltaMsg:
		return m.handleReviewDelta(msg)
	case chatStartedMsg:
		return m.handleChatStarted(msg)
	case chatDeltaMsg:
		return m.handleChatDelta(msg)
	case noteStartedMsg:
		return m.handleNoteStarted(msg)
	case noteDeltaMsg:
		return m.handleNoteDelta(msg)
	case fullTextMsg:
		if !m.detailCurrent(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.config.Logger.Warn().Err(msg.err).Str("paper", m.detail.paper.ID).
				Msg("full text unavailable; chat falls back to the abstract")
			return m, nil
		}
		m.detail.fullText = msg.text
		return m, nil
	}
	return m, nil
}

func (m *model) handlePapers(msg papersMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.stage = stageList
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Press r to reload the feed."
		return m, nil
	}
	m.papers = msg.papers
	m.tags = browse.TagUniverse(msg.papers)
	m.tagIdx = -1
	m.query.Tags = nil
	m.stage = stageList
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Loaded %d papers. Enter opens one; / filters, s sorts, t cycles tags.", len(msg.papers))
	m.refreshView()
	return m, nil
}

func (m *model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusFilter {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.focus = focusList
			m.filterInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.query.Text = m.filterInput.Value()
		m.refreshView()
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view)-1 {
			m.cursor++
		}
	case "/":
		m.focus = focusFilter
		m.filterInput.Focus()
		return m, textinput.Blink
	case "s":
		m.query.Sort = m.query.Sort.Next()
		m.refreshView()
		m.infoMessage = fmt.Sprintf("Sorted by %s.", m.query.Sort)
	case "t":
		m.cycleTag()
	case "b":
		m.toggleSaved()
	case "D":
		m.toggleTheme()
	case "r":
		if m.stage == stageLoading {
			return m, nil
		}
		m.stage = stageLoading
		m.errorMessage = ""
		m.infoMessage = "Reloading the daily papers…"
		return m, tea.Batch(loadPapersCmd(m.config.Feed), m.spinner.Tick)
	case "enter":
		return m.openSelected()
	}
	return m, nil
}

func (m *model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusChat {
		switch msg.Type {
		case tea.KeyEsc:
			m.focus = focusList
			m.chatInput.Blur()
			return m, nil
		case tea.KeyEnter:
			return m.submitQuestion()
		}
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "q":
		m.closeDetail()
		return m, nil
	case "c":
		if m.config.LLM == nil {
			m.errorMessage = "AI features are disabled; set OPENAI_API_KEY to chat."
			return m, nil
		}
		m.focus = focusChat
		m.chatInput.Focus()
		return m, textinput.Blink
	case "n":
		return m.startNote()
	case "v":
		if m.detail != nil && (m.detail.noteText != "" || m.detail.noteErr != "") {
			m.detail.showNote = !m.detail.showNote
			m.syncDetailViewport()
		}
		return m, nil
	case "b":
		m.toggleSaved()
		m.syncDetailViewport()
		return m, nil
	case "D":
		m.toggleTheme()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleReviewStarted(msg reviewStartedMsg) (tea.Model, tea.Cmd) {
	if !m.detailCurrent(msg.gen) {
		return m, nil
	}
	d := m.detail
	if msg.err != nil {
		d.reviewLoading = false
		d.reviewErr = msg.err.Error()
		m.syncDetailViewport()
		return m, nil
	}
	d.reviewCh = msg.ch
	return m, listenReviewCmd(msg.gen, d.parser, msg.ch)
}

func (m *model) handleReviewDelta(msg reviewDeltaMsg) (tea.Model, tea.Cmd) {
	if !m.detailCurrent(msg.gen) {
		return m, nil
	}
	d := m.detail
	switch {
	case msg.err != nil:
		// Sections parsed before the failure stay on screen.
		d.reviewLoading = false
		d.reviewErr = msg.err.Error()
	case msg.done:
		d.reviewLoading = false
	default:
		d.review = msg.review
		m.syncDetailViewport()
		return m, listenReviewCmd(msg.gen, d.parser, d.reviewCh)
	}
	m.syncDetailViewport()
	return m, nil
}

func (m *model) handleChatStarted(msg chatStartedMsg) (tea.Model, tea.Cmd) {
	if !m.detailCurrent(msg.gen) {
		return m, nil
	}
	d := m.detail
	if msg.err != nil {
		d.chatLoading = false
		d.session.Fail(msg.err)
		m.syncDetailViewport()
		return m, nil
	}
	d.chatCh = msg.ch
	return m, listenChatCmd(msg.gen, msg.ch)
}

func (m *model) handleChatDelta(msg chatDeltaMsg) (tea.Model, tea.Cmd) {
	if !m.detailCurrent(msg.gen) {
		return m, nil
	}
	d := m.detail
	switch {
	case msg.err != nil:
		d.chatLoading = false
		d.session.Fail(msg.err)
	case msg.done:
		d.chatLoading = false
		d.session.Finalize()
	default:
		d.session.Advance(msg.text)
		m.syncDetailViewport()
		return m, listenChatCmd(msg.gen, d.chatCh)
	}
	m.syncDetailViewport()
	return m, nil
}

func (m *model) handleNoteStarted(msg noteStartedMsg) (tea.Model, tea.Cmd) {
	if !m.detailCurrent(msg.gen) {
		return m, nil
	}
	d := m.detail
	if msg.err != nil {
		d.noteLoading = false
		d.noteErr = msg.err.Error()
		m.syncDetailViewport()
		return m, nil
	}
	d.noteCh = msg.ch
	return m, listenNoteCmd(msg.gen, msg.ch)
}

func (m *model) handleNoteDelta(msg noteDeltaMsg) (tea.Model, tea.Cmd) {
	if !m.detailCurrent(msg.gen) {
		return m, nil
	}
	d := m.detail
	switch {
	case msg.err != nil:
		d.noteLoading = false
		d.noteErr = msg.err.Error()
	case msg.done:
		d.noteLoading = false
		m.infoMessage = "Note draft ready. Press v to hide it."
	default:
		d.noteText += msg.text
		m.syncDetailViewport()
		return m, listenNoteCmd(msg.gen, d.noteCh)
	}
	m.syncDetailViewport()
	return m, nil
}

func (m *model) openSelected() (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.view) {
		return m, nil
	}
	paper := m.view[m.cursor]
	m.markRead(paper.ID)
	paper.Read = true

	m.viewGen++
	ctx, cancel := context.WithCancel(context.Background())
	d := &detailState{
		paper:   paper,
		gen:     m.viewGen,
		ctx:     ctx,
		cancel:  cancel,
		parser:  &review.Parser{},
		session: chat.NewSession(m.config.LLM, paper.Title, paper.Abstract),
	}
	m.detail = d
	m.stage = stageDetail
	m.focus = focusList
	m.errorMessage = ""
	m.viewport.SetYOffset(0)

	var cmds []tea.Cmd
	if m.config.LLM != nil {
		d.reviewLoading = true
		m.infoMessage = "Streaming the AI review…"
		cmds = append(cmds,
			startReviewCmd(ctx, m.config.LLM, d.gen, paper),
			fullTextCmd(ctx, d.gen, paper),
			m.spinner.Tick,
		)
	} else {
		m.infoMessage = "AI features disabled; showing feed metadata only."
	}
	m.syncDetailViewport()
	return m, tea.Batch(cmds...)
}

// closeDetail cancels the view's streams and drops its state. Fragments
// already in flight are discarded by the generation guard.
func (m *model) closeDetail() {
	if m.detail != nil {
		m.detail.cancel()
		m.detail = nil
	}
	m.stage = stageList
	m.focus = focusList
	m.chatInput.Blur()
	m.chatInput.SetValue("")
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("%d papers in view.", len(m.view))
}

func (m *model) submitQuestion() (tea.Model, tea.Cmd) {
	d := m.detail
	if d == nil {
		return m, nil
	}
	question := strings.TrimSpace(m.chatInput.Value())
	if question == "" {
		return m, nil
	}
	if d.session.InFlight() || d.chatLoading {
		m.infoMessage = "Wait for the current reply to finish."
		return m, nil
	}

	history := d.session.History()
	if err := d.session.Begin(question); err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}
	m.chatInput.SetValue("")
	d.chatLoading = true

	contextText := d.paper.Abstract
	if d.fullText != "" {
		contextText = d.fullText
	}
	m.syncDetailViewport()
	return m, tea.Batch(
		startChatCmd(d.ctx, m.config.LLM, d.gen, d.paper.Title, contextText, history, question),
		m.spinner.Tick,
	)
}

func (m *model) startNote() (tea.Model, tea.Cmd) {
	d := m.detail
	if d == nil {
		return m, nil
	}
	if m.config.LLM == nil {
		m.errorMessage = "AI features are disabled; set OPENAI_API_KEY to draft notes."
		return m, nil
	}
	if d.noteLoading {
		return m, nil
	}
	d.noteLoading = true
	d.noteErr = ""
	d.noteText = ""
	d.showNote = true
	m.infoMessage = "Drafting a note…"
	m.syncDetailViewport()
	return m, tea.Batch(startNoteCmd(d.ctx, m.config.LLM, d.gen, d.paper), m.spinner.Tick)
}

func (m *model) refreshView() {
	m.view = browse.Apply(m.papers, m.query)
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// cycleTag walks the tag universe one tag at a time: no tag, each tag in
// order, back to no tag.
func (m *model) cycleTag() {
	if len(m.tags) == 0 {
		m.infoMessage = "The feed carries no tags today."
		return
	}
	m.tagIdx++
	if m.tagIdx >= len(m.tags) {
		m.tagIdx = -1
	}
	if m.tagIdx < 0 {
		m.query.Tags = nil
		m.infoMessage = "Tag filter cleared."
	} else {
		m.query.Tags = []string{m.tags[m.tagIdx]}
		m.infoMessage = fmt.Sprintf("Showing papers tagged %s.", m.tags[m.tagIdx])
	}
	m.refreshView()
}

// toggleSaved flips the in-memory bookmark on the paper under the cursor
// (or the open detail paper). Nothing is persisted.
func (m *model) toggleSaved() {
	var id string
	switch {
	case m.stage == stageDetail && m.detail != nil:
		id = m.detail.paper.ID
	case m.cursor >= 0 && m.cursor < len(m.view):
		id = m.view[m.cursor].ID
	default:
		return
	}
	saved := false
	for i := range m.papers {
		if m.papers[i].ID == id {
			m.papers[i].Saved = !m.papers[i].Saved
			saved = m.papers[i].Saved
		}
	}
	for i := range m.view {
		if m.view[i].ID == id {
			m.view[i].Saved = saved
		}
	}
	if m.detail != nil && m.detail.paper.ID == id {
		m.detail.paper.Saved = saved
	}
}

func (m *model) toggleTheme() {
	m.theme = m.theme.Toggle()
	m.styles = m.theme.Styles()
	m.syncDetailViewport()
}

func (m *model) markRead(id string) {
	for i := range m.papers {
		if m.papers[i].ID == id {
			m.papers[i].Read = true
		}
	}
	for i := range m.view {
		if m.view[i].ID == id {
			m.view[i].Read = true
		}
	}
}

func (m *model) detailCurrent(gen int) bool {
	return m.detail != nil && m.detail.gen == gen
}

func (m *model) busy() bool {
	if m.stage == stageLoading {
		return true
	}
	if d := m.detail; d != nil {
		return d.reviewLoading || d.chatLoading || d.noteLoading
	}
	return false
}

func (m *model) syncDetailViewport() {
	if m.stage != stageDetail || m.detail == nil {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.detailContent())
	if atBottom {
		m.viewport.GotoBottom()
	}
}
