package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/paperdeck/internal/chat"
	"github.com/csheth/paperdeck/internal/feed"
)

const heroTagline = "Browse the daily papers without leaving the terminal."

func (m *model) View() string {
	switch m.stage {
	case stageDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m *model) viewList() string {
	parts := []string{
		m.styles.Title.Render("paperdeck"),
		m.styles.Tagline.Render(heroTagline),
	}

	if m.focus == focusFilter || m.filterInput.Value() != "" {
		parts = append(parts, joinNonEmpty([]string{
			m.styles.SectionHeader.Render("Filter"),
			m.filterInput.View(),
		}))
	}

	parts = append(parts, m.listStatusLine())

	if m.stage == stageLoading {
		parts = append(parts, m.styles.Helper.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.infoMessage)))
		return joinNonEmpty(parts)
	}

	if len(m.view) == 0 {
		parts = append(parts, m.styles.Helper.Render("No papers match the current filter."))
	} else {
		parts = append(parts, m.listRows())
	}

	if m.errorMessage != "" {
		parts = append(parts, m.styles.Error.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, m.styles.Helper.Render(m.infoMessage))
	}
	parts = append(parts, m.styles.Helper.Render(
		"↑/↓ move • enter open • / filter • t tag • s sort • b save • r reload • D theme • q quit"))
	return joinNonEmpty(parts)
}

func (m *model) listStatusLine() string {
	status := []string{
		fmt.Sprintf("%d/%d papers", len(m.view), len(m.papers)),
		fmt.Sprintf("sort: %s", m.query.Sort),
	}
	if len(m.query.Tags) > 0 {
		status = append(status, "tag: "+strings.Join(m.query.Tags, ", "))
	}
	if m.query.Text != "" {
		status = append(status, fmt.Sprintf("filter: %q", m.query.Text))
	}
	return m.styles.StatusBar.Render(strings.Join(status, "  •  "))
}

func (m *model) listRows() string {
	visible := m.visibleRowCount()
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.view) {
		end = len(m.view)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		paper := m.view[i]
		line := m.listRow(paper)
		if i == m.cursor {
			b.WriteString(m.styles.CurrentLine.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteRune('\n')
		b.WriteString(m.styles.Helper.Render("    " + m.listRowMeta(paper)))
		if i < end-1 {
			b.WriteRune('\n')
		}
	}
	if end < len(m.view) {
		b.WriteRune('\n')
		b.WriteString(m.styles.Helper.Render(fmt.Sprintf("  … %d more below", len(m.view)-end)))
	}
	return b.String()
}

func (m *model) listRow(paper feed.Paper) string {
	markers := ""
	if paper.Saved {
		markers += "★ "
	}
	if paper.Read {
		markers += "· "
	}
	width := m.width - 12
	if width < minViewportWidth {
		width = minViewportWidth
	}
	title := []rune(paper.Title)
	if len(title) > width {
		title = append(title[:width-1], '…')
	}
	return markers + string(title)
}

func (m *model) listRowMeta(paper feed.Paper) string {
	meta := []string{m.styles.Badge.Render(fmt.Sprintf("▲ %d", paper.Upvotes))}
	if !paper.PublishedAt.IsZero() {
		meta = append(meta, paper.PublishedAt.Format("2006-01-02"))
	}
	if line := paper.AuthorLine(3); line != "" {
		meta = append(meta, line)
	}
	if len(paper.Tags) > 0 {
		meta = append(meta, m.styles.Tag.Render(strings.Join(paper.Tags, " ")))
	}
	return strings.Join(meta, "  ")
}

func (m *model) visibleRowCount() int {
	rows := (m.height - chromeHeight) / 2
	if rows < 5 {
		rows = 5
	}
	return rows
}

func (m *model) viewDetail() string {
	d := m.detail
	if d == nil {
		return m.viewList()
	}

	parts := []string{
		m.styles.Title.Render(wordwrap.String(d.paper.Title, m.wrapWidth())),
		m.detailMetaLine(d.paper),
		m.viewport.View(),
	}

	if m.focus == focusChat {
		parts = append(parts, joinNonEmpty([]string{
			m.styles.SectionHeader.Render("Ask"),
			m.chatInput.View(),
			m.styles.Helper.Render("Enter sends the question, Esc leaves the composer."),
		}))
	}

	if m.errorMessage != "" {
		parts = append(parts, m.styles.Error.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, m.styles.Helper.Render(message))
	}
	parts = append(parts, m.styles.Helper.Render(
		"↑/↓ scroll • c chat • n note • v note view • b save • D theme • esc back"))
	return joinNonEmpty(parts)
}

func (m *model) detailMetaLine(paper feed.Paper) string {
	meta := []string{paper.Source + ": " + paper.ID}
	if line := paper.AuthorLine(4); line != "" {
		meta = append(meta, line)
	}
	if !paper.PublishedAt.IsZero() {
		meta = append(meta, paper.PublishedAt.Format("2006-01-02"))
	}
	meta = append(meta, m.styles.Badge.Render(fmt.Sprintf("▲ %d", paper.Upvotes)))
	if paper.Saved {
		meta = append(meta, m.styles.Badge.Render("★ saved"))
	}
	line := strings.Join(meta, "  •  ")
	if len(paper.Tags) > 0 {
		line += "\n" + m.styles.Tag.Render(strings.Join(paper.Tags, " "))
	}
	return m.styles.Helper.Render(line)
}

// detailContent renders the scrollable body: abstract, streamed review,
// optional note draft, and the chat transcript.
func (m *model) detailContent() string {
	d := m.detail
	if d == nil {
		return ""
	}
	width := m.wrapWidth()

	parts := []string{joinNonEmpty([]string{
		m.styles.SectionHeader.Render("Abstract"),
		wordwrap.String(d.paper.Abstract, width),
	})}

	if m.config.LLM != nil {
		parts = append(parts, m.reviewSectionContent(width))
	}
	if d.showNote {
		parts = append(parts, m.noteSectionContent(width))
	}
	if len(d.session.Messages) > 0 || d.chatLoading {
		parts = append(parts, m.transcriptContent(width))
	}
	return joinNonEmpty(parts)
}

func (m *model) reviewSectionContent(width int) string {
	d := m.detail
	parts := []string{m.styles.SectionHeader.Render("AI Review")}

	if d.reviewLoading && d.review.Empty() {
		parts = append(parts, m.styles.Helper.Render("Streaming…"))
	}
	if d.review.Summary != "" {
		parts = append(parts, joinNonEmpty([]string{
			m.styles.SectionHeader.Render("Summary"),
			wordwrap.String(d.review.Summary, width),
		}))
	}
	if d.review.Novelty != "" {
		parts = append(parts, joinNonEmpty([]string{
			m.styles.SectionHeader.Render("Novelty"),
			wordwrap.String(d.review.Novelty, width),
		}))
	}
	if len(d.review.Questions) > 0 {
		var b strings.Builder
		b.WriteString(m.styles.SectionHeader.Render("Questions"))
		for i, q := range d.review.Questions {
			b.WriteRune('\n')
			b.WriteString(wordwrap.String(fmt.Sprintf("%d. %s", i+1, q), width))
		}
		parts = append(parts, b.String())
	}
	if d.reviewErr != "" {
		parts = append(parts, m.styles.Error.Render(wordwrap.String(d.reviewErr, width)))
	}
	return joinNonEmpty(parts)
}

func (m *model) noteSectionContent(width int) string {
	d := m.detail
	parts := []string{m.styles.SectionHeader.Render("Note Draft")}
	if d.noteLoading && d.noteText == "" {
		parts = append(parts, m.styles.Helper.Render("Drafting…"))
	}
	if d.noteText != "" {
		parts = append(parts, wordwrap.String(d.noteText, width))
	}
	if d.noteErr != "" {
		parts = append(parts, m.styles.Error.Render(wordwrap.String(d.noteErr, width)))
	}
	return joinNonEmpty(parts)
}

func (m *model) transcriptContent(width int) string {
	d := m.detail
	parts := []string{m.styles.SectionHeader.Render("Conversation")}
	for _, msg := range d.session.Messages {
		label := m.styles.UserLabel.Render("you")
		if msg.Role == chat.RoleAssistant {
			label = m.styles.AssistantLabel.Render("assistant")
		}
		body := msg.Content
		if msg.Pending {
			if body == "" {
				body = m.spinner.View() + " thinking…"
			} else {
				body += " ▌"
			}
		}
		parts = append(parts, label+"\n"+wordwrap.String(body, width))
	}
	return joinNonEmpty(parts)
}

func (m *model) wrapWidth() int {
	width := m.viewport.Width - 2
	if width < minViewportWidth-viewportHorizontalPadding {
		width = minViewportWidth - viewportHorizontalPadding
	}
	return width
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
