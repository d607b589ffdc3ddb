package feed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FullText downloads the paper PDF through the on-disk cache and extracts its
// plain text. Used to enrich chat context beyond the abstract; callers should
// treat failures as non-fatal and fall back to the abstract.
func FullText(ctx context.Context, p Paper) (string, error) {
	if p.PDFURL == "" {
		return "", fmt.Errorf("paper %s has no PDF URL", p.ID)
	}
	cache, err := newDocCache(nil)
	if err != nil {
		return "", err
	}
	path, err := cache.Fetch(ctx, p.PDFURL, p.ID)
	if err != nil {
		return "", err
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}

	return strings.TrimSpace(extraneousWhitespace.ReplaceAllString(builder.String(), " ")), nil
}
