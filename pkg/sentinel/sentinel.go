// Package sentinel wires the classifier gateway, the record ledger and
// the discovery engine into a batch pipeline. Reviews are classified,
// appended and observed strictly in input order; that ordering defines
// which record counts as a promotion's discovery source.
package sentinel

import (
	"context"
	"errors"
	"fmt"

	"github.com/cognicore/sentinel/pkg/sentinel/classify"
	"github.com/cognicore/sentinel/pkg/sentinel/discovery"
	"github.com/cognicore/sentinel/pkg/sentinel/ingest"
	"github.com/cognicore/sentinel/pkg/sentinel/internalerr"
	"github.com/cognicore/sentinel/pkg/sentinel/ledger"
	"github.com/cognicore/sentinel/pkg/sentinel/report"
	"github.com/cognicore/sentinel/pkg/sentinel/taxonomy"
)

// Options configures a Pipeline.
type Options struct {
	// Classifier assigns topics. Wrap it in classify.Retrier for
	// transient-fault retry. Required.
	Classifier classify.Classifier

	// Topics is the starting taxonomy: the master list plus any
	// previously promoted topics from the store.
	Topics []string

	// Threshold is the promotion hit count. Zero uses the engine
	// default.
	Threshold int

	// Sink persists promotion events. Optional.
	Sink discovery.EventSink

	// Notify receives committed promotions. Optional.
	Notify func(discovery.Event)

	// Warn receives non-fatal pipeline errors: degraded
	// classifications and aborted promotions. Optional.
	Warn func(error)

	// Progress is called after each processed review. Optional.
	Progress func(done, total int)
}

// Pipeline is the single owner of the taxonomy, the ledger and the
// discovery engine. It must not be shared across goroutines.
type Pipeline struct {
	classifier classify.Classifier
	taxonomy   *taxonomy.Store
	ledger     *ledger.Ledger
	engine     *discovery.Engine
	usage      report.Usage

	initialTopics []string
	warn          func(error)
	progress      func(done, total int)
}

// New creates a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Classifier == nil {
		return nil, fmt.Errorf("sentinel: classifier required: %w", internalerr.ErrInvalidConfig)
	}

	tax := taxonomy.New(opts.Topics...)
	led := ledger.New()
	engine := discovery.New(discovery.Options{
		Threshold: opts.Threshold,
		Taxonomy:  tax,
		Ledger:    led,
		Sink:      opts.Sink,
		Notify:    opts.Notify,
	})

	return &Pipeline{
		classifier:    opts.Classifier,
		taxonomy:      tax,
		ledger:        led,
		engine:        engine,
		initialTopics: tax.All(),
		warn:          opts.Warn,
		progress:      opts.Progress,
	}, nil
}

// Process classifies each review in order, appends it to the ledger and
// feeds uncategorized results to the discovery engine. Classification
// failures degrade to flagged rows; promotion failures abort only that
// promotion. The returned error is nil unless the context is canceled.
func (p *Pipeline) Process(ctx context.Context, reviews []ingest.Review) error {
	total := len(reviews)
	for i, rev := range reviews {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := &ledger.Record{ID: rev.ID, Date: rev.Date, Text: rev.Text}

		res, err := p.classifier.Classify(ctx, rev.Text, p.taxonomy.All())
		if err != nil {
			// Degraded fallback: no labels, no suggestion, flagged
			// for manual review. Never a promotion candidate.
			rec.Sentiment = classify.SentimentNeutral
			rec.Uncategorized = true
			rec.NeedsReview = true
			p.usage.TrackFailure()
			p.warnf(fmt.Errorf("review %s: %w", rev.ID, err))
		} else {
			rec.Labels = res.Labels
			rec.Sentiment = res.Sentiment
			rec.Confidence = res.Confidence
			rec.SuggestedTopic = res.SuggestedTopic
			rec.SuggestionReason = res.Reason
			rec.Uncategorized = res.Uncategorized()
			p.usage.Track(res.Tokens, res.LatencyMS)
		}

		idx := p.ledger.Append(rec)

		if rec.Uncategorized && rec.SuggestedTopic != "" {
			if _, err := p.engine.Observe(ctx, rec, idx); err != nil {
				// Duplicate-topic inconsistencies and rolled-back
				// promotions are fatal only to that promotion.
				var perr *discovery.PromotionError
				if errors.Is(err, internalerr.ErrDuplicateTopic) || errors.As(err, &perr) {
					p.warnf(fmt.Errorf("review %s: %w", rev.ID, err))
				} else {
					return err
				}
			}
		}

		if p.progress != nil {
			p.progress(i+1, total)
		}
	}
	return nil
}

func (p *Pipeline) warnf(err error) {
	if p.warn != nil {
		p.warn(err)
	}
}

// Records returns the ledger contents in input order.
func (p *Pipeline) Records() []*ledger.Record { return p.ledger.All() }

// Taxonomy returns the live topic store.
func (p *Pipeline) Taxonomy() *taxonomy.Store { return p.taxonomy }

// Engine returns the discovery engine, for status reporting.
func (p *Pipeline) Engine() *discovery.Engine { return p.engine }

// InitialTopics returns the taxonomy as it was before processing.
func (p *Pipeline) InitialTopics() []string { return p.initialTopics }

// Usage returns accumulated provider call statistics.
func (p *Pipeline) Usage() report.Usage { return p.usage }
