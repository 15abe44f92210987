package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cognicore/sentinel/pkg/sentinel/classify"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

type failTrip struct{ err error }

func (ft failTrip) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, ft.err
}

func TestChatSuccess(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				body, _ := io.ReadAll(req.Body)
				if !strings.Contains(string(body), "classify") {
					t.Fatalf("expected prompt in payload, got %s", body)
				}
				return &http.Response{
					StatusCode: 200,
					Body: io.NopCloser(strings.NewReader(`{
						"choices":[{"message":{"role":"assistant","content":"{\"labels\":[\"Direction\"]}"}}],
						"usage":{"total_tokens":57}
					}`)),
					Header: make(http.Header),
				}
			}),
		},
	}

	reply, err := client.Chat(context.Background(), "You classify movie reviews.", "Classify: great")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(reply.Content, "Direction") {
		t.Errorf("content = %s", reply.Content)
	}
	if reply.Tokens != 57 {
		t.Errorf("tokens = %d, want 57", reply.Tokens)
	}
}

func TestChatProviderError(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"bad key"}}`)),
					Header:     make(http.Header),
				}
			}),
		},
	}

	_, err := client.Chat(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, classify.ErrTransient) {
		t.Error("provider-reported error must not be transient")
	}
}

func TestChatTransientStatuses(t *testing.T) {
	for _, status := range []int{429, 500, 503} {
		client := &Client{
			BaseURL: "https://api.test/v1/chat/completions",
			Model:   "gpt-test",
			HTTPClient: &http.Client{
				Transport: roundTrip(func(req *http.Request) *http.Response {
					return &http.Response{
						StatusCode: status,
						Body:       io.NopCloser(strings.NewReader("")),
						Header:     make(http.Header),
					}
				}),
			},
		}
		if _, err := client.Chat(context.Background(), "s", "u"); !errors.Is(err, classify.ErrTransient) {
			t.Errorf("status %d: err = %v, want ErrTransient", status, err)
		}
	}
}

func TestChatNetworkErrorTransient(t *testing.T) {
	client := &Client{
		BaseURL:    "https://api.test/v1/chat/completions",
		Model:      "gpt-test",
		HTTPClient: &http.Client{Transport: failTrip{err: errors.New("connection refused")}},
	}
	if _, err := client.Chat(context.Background(), "s", "u"); !errors.Is(err, classify.ErrTransient) {
		t.Errorf("err = %v, want ErrTransient", err)
	}
}

func TestChatMissingConfig(t *testing.T) {
	client := &Client{}
	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected config error")
	}
}

func TestOllamaChat(t *testing.T) {
	client := &OllamaClient{
		BaseURL: "http://localhost:11434",
		Model:   "llama3",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if req.URL.Path != "/api/generate" {
					t.Fatalf("path = %s", req.URL.Path)
				}
				body, _ := io.ReadAll(req.Body)
				if !strings.Contains(string(body), `"stream":false`) {
					t.Fatalf("streaming must be disabled: %s", body)
				}
				return &http.Response{
					StatusCode: 200,
					Body: io.NopCloser(strings.NewReader(
						`{"response":"{\"labels\":[\"Direction\"]}","eval_count":31}`)),
					Header: make(http.Header),
				}
			}),
		},
	}

	reply, err := client.Chat(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Tokens != 31 {
		t.Errorf("tokens = %d, want 31", reply.Tokens)
	}
}

func TestOllamaError(t *testing.T) {
	client := &OllamaClient{
		BaseURL: "http://localhost:11434",
		Model:   "llama3",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(strings.NewReader(`{"error":"model not found"}`)),
					Header:     make(http.Header),
				}
			}),
		},
	}
	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
}
