package llm

import (
	"fmt"
	"strings"
	"time"
)

const reviewSystemPrompt = "You are a concise research assistant reviewing academic papers."

const noteSystemPrompt = "You are a research assistant drafting markdown notes for a personal knowledge base."

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// buildReviewPrompt asks for the exact labeled layout the review parser
// splits on: SUMMARY, NOVELTY, then numbered QUESTIONS.
func buildReviewPrompt(title, abstract string) string {
	if title == "" {
		title = "the paper"
	}
	return "Review the paper below. Respond in plain text with exactly these three sections, " +
		"in this order and with these exact uppercase labels:\n" +
		"SUMMARY: a 2-3 sentence summary of the problem and approach.\n" +
		"NOVELTY: 1-2 sentences on what is new relative to prior work.\n" +
		"QUESTIONS: three follow-up questions a reader should ask, numbered \"1. \", \"2. \", \"3. \".\n" +
		"Do not add any other sections or markdown headers.\n\n" +
		"Paper title: " + title + "\n\n" +
		"Abstract:\n" + abstract
}

func buildAnswerSystemPrompt(title, abstract string) string {
	builder := strings.Builder{}
	builder.WriteString("You are a concise research assistant. Use ONLY the provided paper context to answer questions.\n")
	builder.WriteString("If the answer isn't present, say you couldn't find it.\n\n")
	if title != "" {
		builder.WriteString("Paper title: " + title + "\n\n")
	}
	builder.WriteString("Context:\n")
	builder.WriteString(abstract)
	return builder.String()
}

// buildNotePrompt targets the fixed note template: front-matter fields, a tag
// line, a Notes body, and a Links section.
func buildNotePrompt(title, abstract string, tags []string, paperURL string) string {
	if title == "" {
		title = "the paper"
	}
	tagLine := "#paper"
	if len(tags) > 0 {
		parts := make([]string, 0, len(tags)+1)
		parts = append(parts, "#paper")
		for _, tag := range tags {
			parts = append(parts, "#"+strings.ReplaceAll(tag, ".", "-"))
		}
		tagLine = strings.Join(parts, " ")
	}
	return fmt.Sprintf(`Draft a markdown note for this paper using EXACTLY this template, filling in the bracketed parts:

---
title: "%s"
source: %s
created: %s
---
%s

## Notes
[3-5 short paragraphs or bullets capturing the core idea, method, and results]

## Links
- [%s](%s)
[add further related links only if the abstract names them]

Keep the front-matter keys and section headers exactly as given.

Abstract:
%s`, title, paperURL, time.Now().Format("2006-01-02"), tagLine, title, paperURL, abstract)
}
