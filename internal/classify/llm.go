// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/collab-engine/pkg/types"
)

const llmBackendName = "llm"

// backoffBase controls the base duration for exponential backoff on
// transient errors. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// ErrLLMConfig marks startup-time misconfiguration of the LLM backend
// (missing key, missing model). The caller may disable the LLM and
// proceed with keywords (R5.4).
var ErrLLMConfig = errors.New("llm backend misconfigured")

// errMalformedCompletion marks a completion that arrived but cannot be
// used. Retrying would re-pay the rate limit for the same answer, so it
// is terminal and the classifier falls back to keywords immediately.
var errMalformedCompletion = errors.New("malformed completion")

// LLMBackend classifies meetings with a single structured chat
// completion per event (R5). Requests are serialized behind a minimum
// inter-request delay; transient errors retry with exponential backoff,
// honouring a Retry-After hint on 429.
type LLMBackend struct {
	client     *openai.Client
	model      string
	minDelay   time.Duration
	maxRetries int
	timeout    time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// NewLLMBackend validates cfg and builds the backend. A missing API key
// or model is an ErrLLMConfig, detected at startup rather than on the
// first event.
func NewLLMBackend(cfg types.LLMConfig) (*LLMBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key", ErrLLMConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: no model", ErrLLMConfig)
	}

	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}

	return &LLMBackend{
		client:     openai.NewClientWithConfig(cc),
		model:      cfg.Model,
		minDelay:   cfg.RateLimitDelay,
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.RequestTimeout,
	}, nil
}

// Name implements Backend.
func (b *LLMBackend) Name() string { return llmBackendName }

// Classify implements Backend.
func (b *LLMBackend) Classify(ctx context.Context, req Request) (Classification, error) {
	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(lastErr, attempt)
			select {
			case <-ctx.Done():
				return Classification{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := b.rateLimit(ctx); err != nil {
			return Classification{}, err
		}

		cls, err := b.call(ctx, req)
		if err == nil {
			return cls, nil
		}
		if !transient(err) {
			return Classification{}, err
		}
		lastErr = err
	}
	return Classification{}, fmt.Errorf("after %d retries: %w", b.maxRetries, lastErr)
}

// rateLimit enforces the minimum inter-request delay across all events
// of a run (R5.2).
func (b *LLMBackend) rateLimit(ctx context.Context) error {
	b.mu.Lock()
	var wait time.Duration
	if !b.lastRequest.IsZero() {
		wait = b.minDelay - time.Since(b.lastRequest)
	}
	if wait < 0 {
		wait = 0
	}
	b.lastRequest = time.Now().Add(wait)
	b.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// call performs one chat completion with a per-call timeout and parses
// the structured response.
func (b *LLMBackend) call(ctx context.Context, req Request) (Classification, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classificationSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: formatClassificationPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return Classification{}, err
	}
	if len(resp.Choices) == 0 {
		return Classification{}, fmt.Errorf("%w: no choices", errMalformedCompletion)
	}

	var cls Classification
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &cls); err != nil {
		return Classification{}, fmt.Errorf("%w: %v", errMalformedCompletion, err)
	}
	return cls, nil
}

// transient reports whether err is worth retrying: throttling, server
// errors, or transport failures. Auth errors, request errors, and
// malformed completions are terminal.
func transient(err error) bool {
	if errors.Is(err, errMalformedCompletion) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	// Plain transport errors (connection refused, timeouts).
	return !errors.Is(err, context.Canceled)
}

// retryAfterRe matches throttle hints like "Retry after 5s" or
// "retry-after: 12" in 429 error messages.
var retryAfterRe = regexp.MustCompile(`(?i)retry[ -]?after:?\s*(\d+)\s*s?`)

// retryDelay computes the wait before retry attempt n (1-based). A 429
// with an explicit hint wins; otherwise exponential backoff from
// backoffBase (R5.3).
func retryDelay(lastErr error, attempt int) time.Duration {
	var apiErr *openai.APIError
	if errors.As(lastErr, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		if m := retryAfterRe.FindStringSubmatch(apiErr.Message); m != nil {
			if secs, err := strconv.Atoi(m[1]); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
}
