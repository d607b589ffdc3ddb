// Package browse derives ordered views over a paper collection from a
// query. Apply is a pure function: it never mutates its input and calling it
// twice with the same arguments yields identical output.
package browse

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/csheth/paperdeck/internal/feed"
)

// SortKey selects the comparator for the derived view.
type SortKey int

const (
	SortDateDesc SortKey = iota
	SortDateAsc
	SortUpvotes
	SortTitle
)

func (k SortKey) String() string {
	switch k {
	case SortDateDesc:
		return "newest"
	case SortDateAsc:
		return "oldest"
	case SortUpvotes:
		return "upvotes"
	case SortTitle:
		return "title"
	default:
		return "newest"
	}
}

// Next cycles through the sort keys in UI order.
func (k SortKey) Next() SortKey {
	switch k {
	case SortDateDesc:
		return SortDateAsc
	case SortDateAsc:
		return SortUpvotes
	case SortUpvotes:
		return SortTitle
	default:
		return SortDateDesc
	}
}

// Query describes the filter and ordering for a derived view. Tags use AND
// semantics: a paper must carry every selected tag.
type Query struct {
	Text string
	Tags []string
	Sort SortKey
}

// Apply filters papers by the query's text and tag predicates and sorts the
// survivors. The sort is stable, so equal elements keep the feed order.
func Apply(papers []feed.Paper, query Query) []feed.Paper {
	needle := strings.ToLower(strings.TrimSpace(query.Text))
	view := make([]feed.Paper, 0, len(papers))
	for _, paper := range papers {
		if needle != "" && !matchesText(paper, needle) {
			continue
		}
		if !paper.HasTags(query.Tags) {
			continue
		}
		view = append(view, paper)
	}
	sortPapers(view, query.Sort)
	return view
}

// matchesText checks case-insensitive substring containment against the
// title, abstract, and every author's display label.
func matchesText(paper feed.Paper, needle string) bool {
	if strings.Contains(strings.ToLower(paper.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(paper.Abstract), needle) {
		return true
	}
	for _, author := range paper.Authors {
		if strings.Contains(strings.ToLower(author.Label()), needle) {
			return true
		}
	}
	return false
}

func sortPapers(papers []feed.Paper, key SortKey) {
	switch key {
	case SortDateAsc:
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[i].PublishedAt.Before(papers[j].PublishedAt)
		})
	case SortDateDesc:
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[j].PublishedAt.Before(papers[i].PublishedAt)
		})
	case SortUpvotes:
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[i].Upvotes > papers[j].Upvotes
		})
	case SortTitle:
		c := collate.New(language.Und)
		sort.SliceStable(papers, func(i, j int) bool {
			return c.CompareString(papers[i].Title, papers[j].Title) < 0
		})
	}
}

// TagUniverse returns the sorted distinct tags across the full unfiltered
// collection. The filter UI offers these regardless of the current view.
func TagUniverse(papers []feed.Paper) []string {
	seen := map[string]struct{}{}
	for _, paper := range papers {
		for _, tag := range paper.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
