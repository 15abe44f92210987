// Package discovery implements the topic lifecycle: candidate tracking,
// threshold-based promotion and the retroactive re-tagging transaction.
package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/cognicore/sentinel/pkg/sentinel/internalerr"
	"github.com/cognicore/sentinel/pkg/sentinel/ledger"
	"github.com/cognicore/sentinel/pkg/sentinel/normalize"
	"github.com/cognicore/sentinel/pkg/sentinel/taxonomy"
)

// DefaultThreshold is the hit count that promotes a candidate when the
// caller does not configure one.
const DefaultThreshold = 5

// Options configures an Engine.
type Options struct {
	// Threshold is the hit count at which a candidate is promoted.
	// Zero means DefaultThreshold. One promotes on first sighting.
	Threshold int

	Taxonomy *taxonomy.Store
	Ledger   *ledger.Ledger

	// Sink persists promotion events. Optional.
	Sink EventSink

	// Notify is called after each committed promotion. Optional;
	// consumed by the CLI layer for alerts.
	Notify func(Event)

	// Now overrides the clock in tests. Optional.
	Now func() time.Time
}

// Engine watches uncategorized classification results and promotes
// recurring suggestions into the taxonomy. It is the single writer of
// the taxonomy, the tracker and the ledger's label fields; callers must
// feed it records in input order.
type Engine struct {
	threshold int
	taxonomy  *taxonomy.Store
	ledger    *ledger.Ledger
	sink      EventSink
	notify    func(Event)
	now       func() time.Time

	tracker *Tracker
	events  []Event
}

// New creates an Engine. Taxonomy and Ledger are required.
func New(opts Options) *Engine {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		threshold: threshold,
		taxonomy:  opts.Taxonomy,
		ledger:    opts.Ledger,
		sink:      opts.Sink,
		notify:    opts.Notify,
		now:       now,
		tracker:   NewTracker(),
	}
}

// Threshold returns the configured promotion threshold.
func (e *Engine) Threshold() int { return e.threshold }

// Tracker exposes the candidate tracker for status reporting.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// Events returns the promotions committed during this run, in order.
func (e *Engine) Events() []Event { return e.events }

// Observe inspects a freshly appended uncategorized record at ledger
// index idx. It returns true when the observation triggered a
// promotion.
//
// If the suggestion already names a taxonomy member (a classifier
// inconsistency), the record is converted to a normal match for the
// existing topic and no candidate is tracked.
func (e *Engine) Observe(ctx context.Context, rec *ledger.Record, idx int) (bool, error) {
	key := normalize.Key(rec.SuggestedTopic)
	if key == "" {
		return false, nil
	}

	if display, ok := e.taxonomy.Resolve(key); ok {
		rec.AddLabel(display)
		rec.Uncategorized = false
		return false, nil
	}

	cand := e.tracker.observe(key, normalize.Clean(rec.SuggestedTopic), idx, rec.Text, e.now())
	if cand.count < e.threshold {
		return false, nil
	}

	if err := e.promote(ctx, key, idx); err != nil {
		return false, err
	}
	return true, nil
}

// promote runs the promotion transaction for the candidate at key. The
// record at sourceIdx is the one whose observation crossed the
// threshold. All mutations across the taxonomy, the ledger and the
// event sink commit together or not at all.
func (e *Engine) promote(ctx context.Context, key string, sourceIdx int) error {
	cand := e.tracker.get(key)
	if cand == nil {
		return internalerr.ErrNotFound
	}

	if err := e.taxonomy.Add(cand.display); err != nil {
		if errors.Is(err, internalerr.ErrDuplicateTopic) {
			// The rows already match an accepted topic; nothing to
			// retag. Drop the candidate and surface the inconsistency.
			e.tracker.remove(key)
		}
		return err
	}
	display, _ := e.taxonomy.Resolve(key)

	// Re-tag every matching row, not only the tracked indices, to
	// cover rows appended between observation and promotion.
	type undo struct {
		rec    *ledger.Record
		labels []string
		uncat  bool
		source bool
	}
	indices := e.ledger.IndicesWhereSuggested(key)
	saved := make([]undo, 0, len(indices))
	ids := make([]string, 0, len(indices))

	for _, i := range indices {
		rec := e.ledger.Get(i)
		saved = append(saved, undo{
			rec:    rec,
			labels: append([]string(nil), rec.Labels...),
			uncat:  rec.Uncategorized,
			source: rec.DiscoverySource,
		})
		rec.AddLabel(display)
		rec.Uncategorized = false
		if i == sourceIdx {
			rec.DiscoverySource = true
		}
		ids = append(ids, rec.ID)
	}

	event := Event{
		Topic:     display,
		Key:       key,
		Hits:      cand.count,
		FirstSeen: cand.firstSeen,
		Promoted:  e.now(),
		Samples:   append([]string(nil), cand.samples...),
		RecordIDs: ids,
	}

	if e.sink != nil {
		if err := e.sink.Append(ctx, event); err != nil {
			for _, u := range saved {
				u.rec.Labels = u.labels
				u.rec.Uncategorized = u.uncat
				u.rec.DiscoverySource = u.source
			}
			e.taxonomy.Remove(display)
			return &PromotionError{Topic: display, Step: "append event", Err: err}
		}
	}

	e.events = append(e.events, event)
	e.tracker.remove(key)
	if e.notify != nil {
		e.notify(event)
	}
	return nil
}
