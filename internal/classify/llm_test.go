// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/collab-engine/pkg/types"
)

// completionResponse builds a chat completion body whose message content
// is the JSON encoding of cls.
func completionResponse(t *testing.T, cls Classification) []byte {
	t.Helper()
	content, err := json.Marshal(cls)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": string(content)},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func testBackend(t *testing.T, url string) *LLMBackend {
	t.Helper()
	b, err := NewLLMBackend(types.LLMConfig{
		Model:          "test-model",
		APIKey:         "test-key",
		BaseURL:        url,
		RateLimitDelay: time.Millisecond,
		MaxRetries:     3,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return b
}

func TestNewLLMBackendConfigErrors(t *testing.T) {
	_, err := NewLLMBackend(types.LLMConfig{Model: "m"})
	assert.ErrorIs(t, err, ErrLLMConfig, "missing API key")

	_, err = NewLLMBackend(types.LLMConfig{APIKey: "k"})
	assert.ErrorIs(t, err, ErrLLMConfig, "missing model")
}

func TestLLMBackendClassify(t *testing.T) {
	want := Classification{
		SpecificType: "Architecture / Design Review",
		Category:     CategoryStrategic,
		Confidence:   0.92,
		Reasoning:    "design review of the storage layer",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Storage design review")

		w.Header().Set("Content-Type", "application/json")
		w.Write(completionResponse(t, want))
	}))
	defer srv.Close()

	b := testBackend(t, srv.URL)
	got, err := b.Classify(context.Background(), Request{
		Subject: "Storage design review", AttendeeCount: 5, DurationMin: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLLMBackendRetriesTransient(t *testing.T) {
	old := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = old }()

	want := Classification{SpecificType: TypeStandup, Category: CategoryCadence, Confidence: 0.7}

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"message": "upstream hiccup", "type": "server_error"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionResponse(t, want))
	}))
	defer srv.Close()

	b := testBackend(t, srv.URL)
	got, err := b.Classify(context.Background(), Request{Subject: "standup", AttendeeCount: 6})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 3, calls)
}

func TestLLMBackendTerminalOnAuthError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	b := testBackend(t, srv.URL)
	_, err := b.Classify(context.Background(), Request{Subject: "x", AttendeeCount: 2})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "auth errors must not be retried")
}

func TestLLMBackendMalformedCompletionTerminal(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "chatcmpl-test", "object": "chat.completion",
		  "choices": [{"index": 0, "finish_reason": "stop",
		    "message": {"role": "assistant", "content": "not json at all"}}]}`)
	}))
	defer srv.Close()

	b := testBackend(t, srv.URL)
	_, err := b.Classify(context.Background(), Request{Subject: "x", AttendeeCount: 2})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "an unparseable completion must not be retried")
}

func TestLLMBackendExhaustsRetries(t *testing.T) {
	old := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = old }()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "throttled", "type": "rate_limit_error"}}`)
	}))
	defer srv.Close()

	b := testBackend(t, srv.URL)
	_, err := b.Classify(context.Background(), Request{Subject: "x", AttendeeCount: 2})
	require.Error(t, err)
	assert.Equal(t, 4, calls, "initial attempt plus MaxRetries")
}

func TestRetryDelayHonoursRetryAfterHint(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want time.Duration
	}{
		{"plain hint", "Rate limit reached. Retry after 7s.", 7 * time.Second},
		{"header style", "retry-after: 12", 12 * time.Second},
		{"no hint falls back to backoff", "slow down", 2 * backoffBase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: tt.msg}
			got := retryDelay(err, 2)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetryDelayIgnoresHintOnNon429(t *testing.T) {
	err := &openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "Retry after 30s"}
	assert.Equal(t, backoffBase, retryDelay(err, 1))
	assert.Equal(t, 4*backoffBase, retryDelay(errors.New("net down"), 3))
}

func TestLLMBackendRateLimitSpacing(t *testing.T) {
	want := Classification{SpecificType: TypeStandup, Category: CategoryCadence, Confidence: 0.7}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionResponse(t, want))
	}))
	defer srv.Close()

	b := testBackend(t, srv.URL)
	b.minDelay = 50 * time.Millisecond

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := b.Classify(context.Background(), Request{Subject: "standup", AttendeeCount: 4})
		require.NoError(t, err)
	}
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "three calls need two inter-request delays")
}
