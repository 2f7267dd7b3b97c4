package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newAnthropicProvider("claude-haiku-4-5-20251001",
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
	)
}

func anthropicReply(text, stop string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": stop,
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	}
}

func anthropicError(status int, errType string, header http.Header) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": errType, "message": "nope"},
		})
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	const verdict = `{"verdict":"correct","explanation":"Idle consumers.","matchedConcepts":["partition"]}`
	p := newTestAnthropicProvider(t, anthropicReply(verdict, "end_turn"))

	resp, err := p.Generate(context.Background(), Request{
		System:    "You grade incident diagnoses.",
		Messages:  []Message{{Role: RoleUser, Content: "more consumers than partitions"}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != verdict {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 80 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Errorf("stop reason = %q, want end", resp.StopReason)
	}
}

func TestAnthropicProvider_JSONPrefill(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	reply := anthropicReply(`"verdict":"partial"}`, "end_turn")
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		reply(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "judge this"}},
		MaxTokens: 64,
		JSON:      true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"verdict":"partial"}` {
		t.Errorf("text = %q, want the prefill restored", resp.Text)
	}
	if n := len(got.Messages); n != 2 || got.Messages[1].Role != "assistant" || got.Messages[1].Content[0].Text != "{" {
		t.Errorf("request messages = %+v, want a trailing assistant prefill", got.Messages)
	}
}

func TestAnthropicProvider_StopReasons(t *testing.T) {
	tests := map[string]string{"max_tokens": "max_tokens", "refusal": "error", "stop_sequence": "end"}
	for in, want := range tests {
		p := newTestAnthropicProvider(t, anthropicReply("{}", in))
		resp, err := p.Generate(context.Background(), Request{MaxTokens: 10})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if resp.StopReason != want {
			t.Errorf("%s: stop reason = %q, want %q", in, resp.StopReason, want)
		}
	}
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicError(http.StatusTooManyRequests, "rate_limit_error",
		http.Header{"Retry-After": {"7"}}))

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %s, want 7s", rl.RetryAfter)
	}
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	calls := 0
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		anthropicError(http.StatusInternalServerError, "api_error", nil)(w, r)
	})
	_, err := p.Generate(context.Background(), Request{MaxTokens: 100})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("500: expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
	if calls != 1 {
		t.Errorf("server saw %d calls; SDK retries should be off", calls)
	}

	p = newTestAnthropicProvider(t, anthropicError(http.StatusUnauthorized, "authentication_error", nil))
	_, err = p.Generate(context.Background(), Request{MaxTokens: 100})
	var auth *ErrAuth
	if !errors.As(err, &auth) {
		t.Fatalf("401: expected ErrAuth, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_ModelID(t *testing.T) {
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-sonnet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
	if _, err := NewAnthropicProvider(AnthropicConfig{}); err == nil {
		t.Error("expected an error without an API key")
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{"": 0, "3": 3 * time.Second, " 10 ": 10 * time.Second, "-1": 0, "soon": 0}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", in, got, want)
		}
	}
}
