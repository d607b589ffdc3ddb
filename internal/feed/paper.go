package feed

import "time"

// Author identifies a paper author. DisplayName carries the linked-account
// profile name when the author has claimed one on the feed.
type Author struct {
	Name        string
	DisplayName string
}

// Label prefers the linked-account display name over the raw author name.
func (a Author) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Name
}

// Paper represents one entry from the daily papers feed. Records are built
// once during mapping and live in memory for the browsing session; Read and
// Saved are the only fields the UI mutates, and only locally.
type Paper struct {
	ID          string
	Title       string
	Authors     []Author
	Abstract    string
	PublishedAt time.Time
	Source      string
	PaperURL    string
	PDFURL      string
	Thumbnail   string
	Tags        []string
	Upvotes     int
	Read        bool
	Saved       bool
}

// HasTags reports whether the paper carries every tag in want.
func (p Paper) HasTags(want []string) bool {
	for _, tag := range want {
		found := false
		for _, have := range p.Tags {
			if have == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// AuthorLine joins up to max author labels for display.
func (p Paper) AuthorLine(max int) string {
	labels := make([]string, 0, len(p.Authors))
	for _, author := range p.Authors {
		labels = append(labels, author.Label())
	}
	return shortenList(labels, max)
}
