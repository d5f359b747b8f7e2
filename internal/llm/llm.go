// Package llm defines the uniform provider client used by the rotation pool
// and the fallback chain, plus the HTTP implementations for the backing AI
// services. Clients are stateless apart from their HTTP transport and are safe
// for concurrent use.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Request is one generation or translation task.
type Request struct {
	// Instructions is the system prompt. Dedicated translators ignore it.
	Instructions string
	// Text is the user content to summarize or translate.
	Text string
	// SourceLang and TargetLang are two-letter codes. TargetLang is required
	// for translation clients.
	SourceLang string
	TargetLang string
	// MaxTokens caps the completion length; zero leaves the provider default.
	MaxTokens int
}

// Result is a successful provider response.
type Result struct {
	Text string
	// Provider is the label reported to callers, e.g. "openai/gpt-4o-mini".
	Provider string
}

// Client is a single provider/credential/model binding.
type Client interface {
	// Label identifies the binding in logs and exhaustion errors. It never
	// contains the credential.
	Label() string
	Complete(ctx context.Context, req Request) (Result, error)
}

// Keyed is implemented by clients that can name their credential in masked
// form, so several credentials of one provider group can be told apart.
type Keyed interface {
	KeyHint() string
}

var (
	// ErrEmptyResponse is returned when a provider answers without usable text.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrTruncated is returned when the response ends inside a reasoning block,
	// i.e. the output budget ran out before the answer started.
	ErrTruncated = errors.New("llm: response truncated inside reasoning block; increase the output token budget")
)

// StatusError is a non-2xx answer from a provider endpoint.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if len(msg) > 300 {
		msg = msg[:300] + "…"
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, msg)
}

// RateLimited reports whether the provider rejected the call for quota reasons.
func (e *StatusError) RateLimited() bool { return e.Code == 429 }

// maskKey shortens a credential for labels: "sk-abc…wxyz" → "…wxyz".
func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 4 {
		return "…"
	}
	return "…" + key[len(key)-4:]
}
