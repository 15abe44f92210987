package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cognicore/sentinel/pkg/sentinel/normalize"
)

// rawResult mirrors the JSON shape the prompt asks the model for.
type rawResult struct {
	Labels           []string `json:"labels"`
	Sentiment        string   `json:"sentiment"`
	Confidence       *float64 `json:"confidence"`
	SuggestedLabel   string   `json:"suggested_label"`
	SuggestionReason string   `json:"suggestion_reason"`
}

const (
	uncategorizedLabel = "UNCATEGORIZED"
	defaultConfidence  = 0.7
)

// ParseResponse extracts a Result from raw model output. Models wrap
// JSON in code fences or prose often enough that the payload is located
// by brace scanning rather than trusted as-is. Labels are normalized
// against the known topic list by case-insensitive containment, matching
// the prompt's instruction to reuse existing names. Returns ErrMalformed
// when no usable assignment can be recovered.
func ParseResponse(raw string, topics []string) (Result, error) {
	var parsed rawResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	uncategorized := false
	var labels []string
	for _, label := range parsed.Labels {
		clean := normalize.Clean(label)
		if clean == "" {
			continue
		}
		if strings.EqualFold(clean, uncategorizedLabel) {
			uncategorized = true
			continue
		}
		if known, ok := matchTopic(clean, topics); ok {
			labels = appendUnique(labels, known)
		}
	}

	res := Result{
		Labels:     labels,
		Sentiment:  fixSentiment(parsed.Sentiment),
		Confidence: defaultConfidence,
	}
	if parsed.Confidence != nil {
		res.Confidence = clamp(*parsed.Confidence)
	}

	if uncategorized || len(labels) == 0 {
		res.SuggestedTopic = normalize.Clean(parsed.SuggestedLabel)
		res.Reason = strings.TrimSpace(parsed.SuggestionReason)
	}
	if len(res.Labels) == 0 && res.SuggestedTopic == "" {
		return Result{}, fmt.Errorf("%w: no labels and no suggestion", ErrMalformed)
	}
	// A suggestion alongside real matches is noise, not discovery.
	if len(res.Labels) > 0 {
		res.SuggestedTopic = ""
		res.Reason = ""
	}
	return res, nil
}

// extractJSON strips markdown code fences and returns the outermost
// brace-delimited span, or the trimmed input when none is found.
func extractJSON(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// matchTopic resolves a model-emitted label to a known topic by
// case-insensitive containment in either direction.
func matchTopic(label string, topics []string) (string, bool) {
	lower := strings.ToLower(label)
	for _, known := range topics {
		kl := strings.ToLower(known)
		if strings.Contains(kl, lower) || strings.Contains(lower, kl) {
			return known, true
		}
	}
	return "", false
}

func fixSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	case SentimentMixed:
		return SentimentMixed
	default:
		return SentimentNeutral
	}
}

func appendUnique(labels []string, label string) []string {
	for _, l := range labels {
		if l == label {
			return labels
		}
	}
	return append(labels, label)
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
