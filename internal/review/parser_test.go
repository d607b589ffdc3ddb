package review

import (
	"reflect"
	"testing"
)

func TestParserAssemblesRecordAcrossFragments(t *testing.T) {
	t.Parallel()

	parser := &Parser{}
	fragments := []string{
		"SUMMARY: A",
		" paper.\nNOVELTY: It",
		" is new.\nQUESTIONS:\n1. Why?\n2. How?",
	}

	var last Review
	for _, fragment := range fragments {
		last = parser.Feed(fragment)
	}

	if last.Summary != "A paper." {
		t.Fatalf("summary = %q, want %q", last.Summary, "A paper.")
	}
	if last.Novelty != "It is new." {
		t.Fatalf("novelty = %q, want %q", last.Novelty, "It is new.")
	}
	if !reflect.DeepEqual(last.Questions, []string{"Why?", "How?"}) {
		t.Fatalf("questions = %#v, want [Why? How?]", last.Questions)
	}
}

func TestParserRederivesTruncatedSections(t *testing.T) {
	t.Parallel()

	parser := &Parser{}

	first := parser.Feed("SUMMARY: The mo")
	if first.Summary != "The mo" {
		t.Fatalf("truncated summary = %q", first.Summary)
	}

	second := parser.Feed("del compresses context.\nNOVELTY:")
	if second.Summary != "The model compresses context." {
		t.Fatalf("summary not overwritten on later fragment: %q", second.Summary)
	}
	if second.Novelty != "" {
		t.Fatalf("label without content should yield an empty section, got %q", second.Novelty)
	}

	third := parser.Feed(" First to do so.")
	if third.Novelty != "First to do so." {
		t.Fatalf("novelty = %q", third.Novelty)
	}
}

func TestParseEmitsOneSnapshotPerFragment(t *testing.T) {
	t.Parallel()

	parser := &Parser{}
	snapshots := []Review{
		parser.Feed("preamble "),
		parser.Feed("SUMMARY: short."),
		parser.Feed("\nQUESTIONS:\n1. Q one"),
	}

	if !snapshots[0].Empty() {
		t.Fatalf("no labels yet, expected empty record, got %#v", snapshots[0])
	}
	if snapshots[1].Summary != "short." {
		t.Fatalf("second snapshot summary = %q", snapshots[1].Summary)
	}
	// NOVELTY never arrived; QUESTIONS still parses.
	if snapshots[2].Novelty != "" {
		t.Fatalf("novelty should be absent, got %q", snapshots[2].Novelty)
	}
	if !reflect.DeepEqual(snapshots[2].Questions, []string{"Q one"}) {
		t.Fatalf("questions = %#v", snapshots[2].Questions)
	}
}

func TestParseIgnoresLowercaseLabels(t *testing.T) {
	t.Parallel()

	got := Parse("summary: not a real label\nSUMMARY: real content")
	if got.Summary != "real content" {
		t.Fatalf("labels are case-sensitive; summary = %q", got.Summary)
	}
}

func TestSplitQuestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"numbered lines", "1. Why?\n2. How?", []string{"Why?", "How?"}},
		{"single line numbering", "1. What next? 2. Who benefits?", []string{"What next?", "Who benefits?"}},
		{"empty splits dropped", "1. \n2. Only one", []string{"Only one"}},
		{"no numbering", "Just a question?", []string{"Just a question?"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := splitQuestions(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitQuestions(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
