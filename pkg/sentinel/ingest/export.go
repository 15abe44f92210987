package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cognicore/sentinel/pkg/sentinel/ledger"
)

// labelSeparator joins multi-label assignments in the output dataset.
const labelSeparator = "; "

// Write serializes the ledger to CSV in input order: original fields
// first, then the classification and discovery columns.
func Write(w io.Writer, records []*ledger.Record) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id", "date", "review_text",
		"labels", "sentiment", "confidence",
		"suggested_label", "discovery_source", "needs_review",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("ingest: write header: %w", err)
	}

	for _, rec := range records {
		labels := strings.Join(rec.Labels, labelSeparator)
		if labels == "" && rec.Uncategorized {
			labels = "UNCATEGORIZED"
		}
		row := []string{
			rec.ID,
			rec.Date,
			rec.Text,
			labels,
			rec.Sentiment,
			strconv.FormatFloat(rec.Confidence, 'f', 2, 64),
			rec.SuggestedTopic,
			strconv.FormatBool(rec.DiscoverySource),
			strconv.FormatBool(rec.NeedsReview),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ingest: write row %s: %w", rec.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteReviews writes raw reviews as an input-format CSV, used by the
// synthetic data generator.
func WriteReviews(path string, reviews []Review) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"id", "date", "review_text"}); err != nil {
		return fmt.Errorf("ingest: write header: %w", err)
	}
	for _, rev := range reviews {
		if err := cw.Write([]string{rev.ID, rev.Date, rev.Text}); err != nil {
			return fmt.Errorf("ingest: write row %s: %w", rev.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

// WriteFile writes the ledger to path, creating parent directories as
// needed. The file is written whole or not at all: output lands in a
// temp file first and is renamed into place.
func WriteFile(path string, records []*ledger.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	return nil
}
