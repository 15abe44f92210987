// Package classify defines the classifier gateway contract: given review
// text and the current topic set, produce a label assignment or a new
// topic suggestion. Providers live behind the Chat interface; this
// package owns prompt construction, response parsing and retry policy.
package classify

import (
	"context"
	"errors"
)

// Sentiment values a Result may carry. Anything else is coerced to
// neutral during parsing.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentMixed    = "mixed"
)

// Error kinds. Transient errors are retried; malformed responses are
// not, and both degrade to an unlabeled record upstream.
var (
	ErrTransient = errors.New("transient gateway error")
	ErrMalformed = errors.New("malformed gateway response")
)

// Result is one classification outcome. Exactly one of the following
// holds: Labels is non-empty (a normal match), or Labels is empty and
// SuggestedTopic is non-empty (uncategorized).
type Result struct {
	Labels         []string
	Sentiment      string
	Confidence     float64
	SuggestedTopic string
	Reason         string

	Tokens    int     // provider-reported token usage, 0 if unknown
	LatencyMS float64 // wall time of the provider call
}

// Uncategorized reports whether the result proposes a new topic.
func (r Result) Uncategorized() bool {
	return len(r.Labels) == 0 && r.SuggestedTopic != ""
}

// Classifier assigns topics to review text given the known topic list.
type Classifier interface {
	Classify(ctx context.Context, text string, topics []string) (Result, error)
}
