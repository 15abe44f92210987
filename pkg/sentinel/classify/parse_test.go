package classify

import (
	"errors"
	"testing"
)

var knownTopics = []string{"Acting Performance", "Plot & Story", "Direction"}

func TestParseResponseNormalMatch(t *testing.T) {
	raw := `{"labels": ["Acting Performance"], "sentiment": "positive", "confidence": 0.92}`

	res, err := ParseResponse(raw, knownTopics)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(res.Labels) != 1 || res.Labels[0] != "Acting Performance" {
		t.Errorf("labels = %v", res.Labels)
	}
	if res.Sentiment != SentimentPositive || res.Confidence != 0.92 {
		t.Errorf("sentiment=%s confidence=%v", res.Sentiment, res.Confidence)
	}
	if res.Uncategorized() {
		t.Error("normal match reported uncategorized")
	}
}

func TestParseResponseCodeFences(t *testing.T) {
	raw := "Here is the classification:\n```json\n" +
		`{"labels": ["UNCATEGORIZED"], "sentiment": "negative", "confidence": 0.85,
		 "suggested_label": "Pacing Issues", "suggestion_reason": "complaints about pacing"}` +
		"\n```\nLet me know if you need anything else."

	res, err := ParseResponse(raw, knownTopics)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if !res.Uncategorized() {
		t.Fatal("expected uncategorized result")
	}
	if res.SuggestedTopic != "Pacing Issues" {
		t.Errorf("suggested = %q", res.SuggestedTopic)
	}
	if res.Reason != "complaints about pacing" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestParseResponseLabelMatching(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		want  []string
		uncat bool
	}{
		{
			name: "containment match",
			raw:  `{"labels": ["acting"], "sentiment": "neutral", "suggested_label": "x"}`,
			want: []string{"Acting Performance"},
		},
		{
			name: "reverse containment",
			raw:  `{"labels": ["The Plot & Story arc"], "sentiment": "neutral", "suggested_label": "x"}`,
			want: []string{"Plot & Story"},
		},
		{
			name: "duplicates collapsed",
			raw:  `{"labels": ["Direction", "direction"], "sentiment": "neutral"}`,
			want: []string{"Direction"},
		},
		{
			name:  "unknown label falls back to suggestion",
			raw:   `{"labels": ["Costume Design"], "sentiment": "neutral", "suggested_label": "Costume Design"}`,
			want:  nil,
			uncat: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := ParseResponse(c.raw, knownTopics)
			if err != nil {
				t.Fatalf("ParseResponse: %v", err)
			}
			if len(res.Labels) != len(c.want) {
				t.Fatalf("labels = %v, want %v", res.Labels, c.want)
			}
			for i := range c.want {
				if res.Labels[i] != c.want[i] {
					t.Errorf("labels = %v, want %v", res.Labels, c.want)
				}
			}
			if res.Uncategorized() != c.uncat {
				t.Errorf("uncategorized = %v, want %v", res.Uncategorized(), c.uncat)
			}
		})
	}
}

func TestParseResponseSuggestionIgnoredOnMatch(t *testing.T) {
	raw := `{"labels": ["Direction"], "sentiment": "mixed", "suggested_label": "Pacing Issues"}`

	res, err := ParseResponse(raw, knownTopics)
	if err != nil {
		t.Fatal(err)
	}
	if res.SuggestedTopic != "" {
		t.Errorf("suggestion should be dropped when labels matched, got %q", res.SuggestedTopic)
	}
}

func TestParseResponseSentimentCoercion(t *testing.T) {
	cases := map[string]string{
		"POSITIVE": SentimentPositive,
		" mixed ":  SentimentMixed,
		"angry":    SentimentNeutral,
		"":         SentimentNeutral,
	}
	for in, want := range cases {
		raw := `{"labels": ["Direction"], "sentiment": "` + in + `"}`
		res, err := ParseResponse(raw, knownTopics)
		if err != nil {
			t.Fatalf("ParseResponse(%q): %v", in, err)
		}
		if res.Sentiment != want {
			t.Errorf("sentiment %q -> %q, want %q", in, res.Sentiment, want)
		}
	}
}

func TestParseResponseDefaultConfidence(t *testing.T) {
	raw := `{"labels": ["Direction"], "sentiment": "neutral"}`
	res, err := ParseResponse(raw, knownTopics)
	if err != nil {
		t.Fatal(err)
	}
	if res.Confidence != defaultConfidence {
		t.Errorf("confidence = %v, want %v", res.Confidence, defaultConfidence)
	}
}

func TestParseResponseMalformed(t *testing.T) {
	cases := []string{
		"I could not classify this review.",
		`{"labels": [], "sentiment": "neutral"}`, // no labels, no suggestion
		"{broken json",
	}
	for _, raw := range cases {
		if _, err := ParseResponse(raw, knownTopics); !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseResponse(%q) err = %v, want ErrMalformed", raw, err)
		}
	}
}
