// Package llm provides chat completion clients for the supported
// providers. Both clients implement classify.Chat; transient transport
// faults are marked classify.ErrTransient so the retry layer can tell
// them apart from hard failures.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cognicore/sentinel/pkg/sentinel/classify"
)

const defaultTimeout = 120 * time.Second

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int

	HTTPClient *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat implements classify.Chat.
func (c *Client) Chat(ctx context.Context, system, user string) (classify.Reply, error) {
	if c.BaseURL == "" || c.Model == "" {
		return classify.Reply{}, fmt.Errorf("llm: base URL and model required")
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	})
	if err != nil {
		return classify.Reply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return classify.Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := httpClient(c.HTTPClient).Do(req)
	if err != nil {
		return classify.Reply{}, fmt.Errorf("llm: %v: %w", err, classify.ErrTransient)
	}
	defer resp.Body.Close()

	if retryable(resp.StatusCode) {
		return classify.Reply{}, fmt.Errorf("llm: http %d: %w", resp.StatusCode, classify.ErrTransient)
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return classify.Reply{}, fmt.Errorf("llm: decode response: %w", err)
	}
	if payload.Error != nil {
		return classify.Reply{}, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	if len(payload.Choices) == 0 {
		return classify.Reply{}, fmt.Errorf("llm: empty response")
	}
	return classify.Reply{
		Content: payload.Choices[0].Message.Content,
		Tokens:  payload.Usage.TotalTokens,
	}, nil
}

// OllamaClient calls a local Ollama generate endpoint.
type OllamaClient struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int

	HTTPClient *http.Client
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
	Error     string `json:"error"`
}

// Chat implements classify.Chat.
func (c *OllamaClient) Chat(ctx context.Context, system, user string) (classify.Reply, error) {
	if c.BaseURL == "" || c.Model == "" {
		return classify.Reply{}, fmt.Errorf("ollama: base URL and model required")
	}

	reqBody, err := json.Marshal(ollamaRequest{
		Model:  c.Model,
		Prompt: user,
		System: system,
		Options: ollamaOptions{
			Temperature: c.Temperature,
			NumPredict:  c.MaxTokens,
		},
	})
	if err != nil {
		return classify.Reply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return classify.Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(c.HTTPClient).Do(req)
	if err != nil {
		return classify.Reply{}, fmt.Errorf("ollama: %v: %w", err, classify.ErrTransient)
	}
	defer resp.Body.Close()

	if retryable(resp.StatusCode) {
		return classify.Reply{}, fmt.Errorf("ollama: http %d: %w", resp.StatusCode, classify.ErrTransient)
	}

	var payload ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return classify.Reply{}, fmt.Errorf("ollama: decode response: %w", err)
	}
	if payload.Error != "" {
		return classify.Reply{}, fmt.Errorf("ollama error: %s", payload.Error)
	}
	return classify.Reply{Content: payload.Response, Tokens: payload.EvalCount}, nil
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
