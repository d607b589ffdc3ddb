package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultEndpoint is the public daily papers listing.
const DefaultEndpoint = "https://huggingface.co/api/daily_papers"

const defaultListTimeout = 30 * time.Second

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// Client fetches the paper collection from the feed endpoint.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient builds a feed client. A nil httpClient falls back to a default
// with a request timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultListTimeout}
	}
	return &Client{endpoint: endpoint, client: httpClient}
}

type listEntry struct {
	Paper struct {
		ID          string       `json:"id"`
		Title       string       `json:"title"`
		Authors     []listAuthor `json:"authors"`
		Summary     string       `json:"summary"`
		PublishedAt string       `json:"publishedAt"`
		Tags        []string     `json:"tags"`
		Upvotes     int          `json:"upvotes"`
	} `json:"paper"`
	Thumbnail string `json:"thumbnail"`
}

type listAuthor struct {
	Name string `json:"name"`
	User *struct {
		Fullname string `json:"fullname"`
	} `json:"user"`
}

// List fetches the current paper collection. Failures are retryable by
// calling List again; nothing is cached between calls.
func (c *Client) List(ctx context.Context) ([]Paper, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach paper feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("paper feed error: %s (%s)", resp.Status, string(body))
	}

	var entries []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode paper feed: %w", err)
	}

	papers := make([]Paper, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Paper.ID) == "" {
			continue
		}
		papers = append(papers, mapEntry(entry))
	}
	return papers, nil
}

// mapEntry converts the external schema into a Paper, defaulting missing tags
// to an empty set and missing upvotes to zero. The feed serves arXiv
// identifiers, so the source label and canonical URLs derive from the ID.
func mapEntry(entry listEntry) Paper {
	authors := make([]Author, 0, len(entry.Paper.Authors))
	for _, a := range entry.Paper.Authors {
		author := Author{Name: strings.TrimSpace(a.Name)}
		if a.User != nil {
			author.DisplayName = strings.TrimSpace(a.User.Fullname)
		}
		authors = append(authors, author)
	}

	tags := entry.Paper.Tags
	if tags == nil {
		tags = []string{}
	}

	published, _ := time.Parse(time.RFC3339, entry.Paper.PublishedAt)

	id := strings.TrimSpace(entry.Paper.ID)
	return Paper{
		ID:          id,
		Title:       normalizeWhitespace(entry.Paper.Title),
		Authors:     authors,
		Abstract:    normalizeWhitespace(entry.Paper.Summary),
		PublishedAt: published,
		Source:      "arXiv",
		PaperURL:    fmt.Sprintf("https://arxiv.org/abs/%s", id),
		PDFURL:      fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", id),
		Thumbnail:   entry.Thumbnail,
		Tags:        tags,
		Upvotes:     entry.Paper.Upvotes,
	}
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

func shortenList(values []string, max int) string {
	if max <= 0 || len(values) <= max {
		return strings.Join(values, ", ")
	}
	visible := strings.Join(values[:max], ", ")
	return fmt.Sprintf("%s +%d more", visible, len(values)-max)
}
