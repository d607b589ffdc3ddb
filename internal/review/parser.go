// Package review turns the fragment stream of a generated paper review into
// a structured record, one partial snapshot per fragment.
package review

import (
	"regexp"
	"strings"
)

// Section labels the backend is prompted to emit, in order. Matching is
// case-sensitive; each section's content runs until the next label or the end
// of the buffer.
const (
	labelSummary   = "SUMMARY:"
	labelNovelty   = "NOVELTY:"
	labelQuestions = "QUESTIONS:"
)

var sectionLabels = []string{labelSummary, labelNovelty, labelQuestions}

var questionNumberRe = regexp.MustCompile(`\s*\d+\.\s+`)

// Review is a partially-populated record. A section is absent (empty) until
// the underlying stream has produced enough text to populate it.
type Review struct {
	Summary   string
	Novelty   string
	Questions []string
}

// Empty reports whether no section has been populated yet.
func (r Review) Empty() bool {
	return r.Summary == "" && r.Novelty == "" && len(r.Questions) == 0
}

// Parser accumulates streamed fragments and re-derives the whole record from
// the full buffer after each one, so a section that arrived truncated is
// overwritten once more text lands. A parser is single-use: start a fresh one
// per paper.
type Parser struct {
	buf strings.Builder
}

// Feed appends one fragment and returns the record derived from everything
// received so far.
func (p *Parser) Feed(fragment string) Review {
	p.buf.WriteString(fragment)
	return Parse(p.buf.String())
}

// Text returns the raw accumulated buffer.
func (p *Parser) Text() string {
	return p.buf.String()
}

// Parse extracts the labeled sections from text. Sections whose label has not
// appeared yet stay empty; a label with no content yet yields an empty
// section for this snapshot.
func Parse(text string) Review {
	sections := splitSections(text)
	return Review{
		Summary:   sections[0],
		Novelty:   sections[1],
		Questions: splitQuestions(sections[2]),
	}
}

func splitSections(text string) [3]string {
	starts := [3]int{-1, -1, -1}
	pos := 0
	for i, label := range sectionLabels {
		idx := strings.Index(text[pos:], label)
		if idx < 0 {
			continue
		}
		starts[i] = pos + idx + len(label)
		pos = starts[i]
	}

	var out [3]string
	for i := range sectionLabels {
		if starts[i] < 0 {
			continue
		}
		end := len(text)
		for j := i + 1; j < len(sectionLabels); j++ {
			if starts[j] >= 0 {
				end = starts[j] - len(sectionLabels[j])
				break
			}
		}
		out[i] = strings.TrimSpace(text[starts[i]:end])
	}
	return out
}

// splitQuestions breaks the questions section on its "1. " style numbering.
// Empty splits are discarded and entries are whitespace-trimmed.
func splitQuestions(content string) []string {
	if content == "" {
		return nil
	}
	parts := questionNumberRe.Split(content, -1)
	questions := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		questions = append(questions, part)
	}
	if len(questions) == 0 {
		return nil
	}
	return questions
}
