package classify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Reply is a provider completion plus reported usage.
type Reply struct {
	Content string
	Tokens  int
}

// Chat is the minimal LLM surface the gateway needs. internal/llm
// implements it for OpenAI-compatible and Ollama endpoints.
type Chat interface {
	Chat(ctx context.Context, system, user string) (Reply, error)
}

// Gateway turns a Chat provider into a Classifier: it builds the
// guided-classification prompt, calls the provider and parses the
// response.
type Gateway struct {
	Chat Chat
}

// Classify implements Classifier.
func (g *Gateway) Classify(ctx context.Context, text string, topics []string) (Result, error) {
	if g.Chat == nil {
		return Result{}, fmt.Errorf("classify: nil chat provider")
	}

	start := time.Now()
	reply, err := g.Chat.Chat(ctx, buildPrompt(topics), fmt.Sprintf("Classify:\n\n%q", text))
	if err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}

	res, err := ParseResponse(reply.Content, topics)
	if err != nil {
		return Result{}, err
	}
	res.Tokens = reply.Tokens
	res.LatencyMS = float64(time.Since(start)) / float64(time.Millisecond)
	return res, nil
}

func buildPrompt(topics []string) string {
	quoted := make([]string, len(topics))
	for i, t := range topics {
		quoted[i] = fmt.Sprintf("%q", t)
	}

	return fmt.Sprintf(`You classify movie reviews.

AVAILABLE TOPICS:
%s

Rules:
1. First, try to match the review to one of the AVAILABLE TOPICS
2. If it clearly doesn't fit any topic, use "UNCATEGORIZED" as the label
3. When using UNCATEGORIZED, you MUST suggest a new topic name
4. Sentiment options: positive, negative, neutral, mixed

Output format (JSON only):
{"labels": ["Topic"], "sentiment": "neutral", "confidence": 0.9, "suggested_label": null, "suggestion_reason": null}

For uncategorized reviews:
{"labels": ["UNCATEGORIZED"], "sentiment": "negative", "confidence": 0.85, "suggested_label": "New Topic Name", "suggestion_reason": "Why this is a new category"}`,
		strings.Join(quoted, ", "))
}
