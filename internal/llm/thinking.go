package llm

import (
	"regexp"
	"strings"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

var thinkBlockRE = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes <think>…</think> reasoning scaffolding from a model
// response and returns the trimmed answer.
//
// A reasoning block that never closes is dropped together with everything
// after it. A response that is empty once the blocks are removed yields
// ErrTruncated. A response that was empty to begin
// with yields ErrEmptyResponse.
func StripThinking(text string) (string, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return "", ErrEmptyResponse
	}
	hadMarker := strings.Contains(raw, thinkOpen) || strings.Contains(raw, thinkClose)

	out := thinkBlockRE.ReplaceAllString(raw, "")
	// A block that never closes runs to the end; keep any answer before it.
	if i := strings.Index(out, thinkOpen); i >= 0 {
		out = out[:i]
	}
	// Some models omit the opening tag and only emit the closing one.
	if i := strings.LastIndex(out, thinkClose); i >= 0 {
		out = out[i+len(thinkClose):]
	}
	out = strings.TrimSpace(out)
	if out == "" {
		if hadMarker {
			return "", ErrTruncated
		}
		return "", ErrEmptyResponse
	}
	return out, nil
}
