// Package ledger holds the ordered collection of classified review
// records. The list is append-only; individual records are mutated in
// place when a discovered topic is promoted and historical rows are
// re-tagged.
package ledger

import (
	"github.com/cognicore/sentinel/pkg/sentinel/normalize"
)

// Record is one classified review.
type Record struct {
	ID   string // stable identifier, from input or synthesized
	Date string // original date column, passed through
	Text string // original review content, never interpreted here

	Labels     []string // assigned topic names, rewritten on promotion
	Sentiment  string   // positive, negative, neutral or mixed
	Confidence float64  // classifier confidence in [0,1]

	Uncategorized    bool   // no taxonomy member matched
	SuggestedTopic   string // candidate name proposed when uncategorized
	SuggestionReason string // classifier's rationale, historical trace

	// DiscoverySource marks the single record whose observation pushed
	// a candidate over the promotion threshold.
	DiscoverySource bool

	// NeedsReview marks degraded-fallback rows where classification
	// failed after retries. Never promotion candidates.
	NeedsReview bool
}

// AddLabel appends a label unless an equivalent one is already present.
func (r *Record) AddLabel(name string) {
	key := normalize.Key(name)
	for _, l := range r.Labels {
		if normalize.Key(l) == key {
			return
		}
	}
	r.Labels = append(r.Labels, name)
}

// Ledger is the record list. Row order matches input order.
type Ledger struct {
	records []*Record
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append adds a record and returns its index.
func (l *Ledger) Append(r *Record) int {
	l.records = append(l.records, r)
	return len(l.records) - 1
}

// Get returns the record at idx, or nil when out of range.
func (l *Ledger) Get(idx int) *Record {
	if idx < 0 || idx >= len(l.records) {
		return nil
	}
	return l.records[idx]
}

// IndicesWhereSuggested returns the indices of every record whose
// suggested topic normalizes to key. Linear scan; the workload is a
// bounded batch.
func (l *Ledger) IndicesWhereSuggested(key string) []int {
	var out []int
	for i, r := range l.records {
		if r.SuggestedTopic != "" && normalize.Key(r.SuggestedTopic) == key {
			out = append(out, i)
		}
	}
	return out
}

// All returns the records in input order. Callers must not reorder.
func (l *Ledger) All() []*Record {
	return l.records
}

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }
