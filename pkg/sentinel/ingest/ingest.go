// Package ingest reads review datasets from CSV and writes the
// processed ledger back out. Review text is frequently scraped from the
// web, so markup is stripped on the way in. Rows without an id column
// get a synthesized ULID so every record has a stable identifier.
package ingest

import (
	"crypto/rand"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/net/html"

	"github.com/cognicore/sentinel/pkg/sentinel/internalerr"
	"github.com/cognicore/sentinel/pkg/sentinel/normalize"
)

// Columns maps dataset header names to the fields the pipeline needs.
// Text is required; ID and Date are optional.
type Columns struct {
	ID   string
	Date string
	Text string
}

// DefaultColumns matches the synthetic dataset layout.
func DefaultColumns() Columns {
	return Columns{ID: "id", Date: "date", Text: "review_text"}
}

// Review is one input row, cleaned and identified.
type Review struct {
	ID   string
	Date string
	Text string
}

// Read parses reviews from r. The first row must be a header containing
// cols.Text; ID and Date columns are picked up when present.
func Read(r io.Reader, cols Columns) ([]Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	idCol, dateCol, textCol := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case cols.ID:
			idCol = i
		case cols.Date:
			dateCol = i
		case cols.Text:
			textCol = i
		}
	}
	if textCol == -1 {
		return nil, fmt.Errorf("ingest: column %q not found in %v: %w",
			cols.Text, header, internalerr.ErrInvalidInput)
	}

	entropy := ulid.Monotonic(rand.Reader, 0)
	var reviews []Review
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read row: %w", err)
		}

		rev := Review{Text: normalize.Clean(StripHTML(field(row, textCol)))}
		if rev.Text == "" {
			continue
		}
		rev.ID = strings.TrimSpace(field(row, idCol))
		if rev.ID == "" {
			rev.ID = ulid.MustNew(ulid.Now(), entropy).String()
		}
		rev.Date = strings.TrimSpace(field(row, dateCol))
		reviews = append(reviews, rev)
	}
	return reviews, nil
}

// ReadFile reads reviews from a CSV file.
func ReadFile(path string, cols Columns) ([]Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()
	return Read(f, cols)
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// StripHTML returns the text content of s with markup removed. Inputs
// without markup pass through untouched.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
