package rotation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProviders is returned when a pool or chain has nothing to try.
var ErrNoProviders = errors.New("no providers configured")

// ExhaustedError reports that every combination (or fallback credential)
// was tried and failed.
type ExhaustedError struct {
	// Scope names the pool or chain, e.g. "summary" or "translation".
	Scope string
	// Attempted lists the labels in the order they were tried.
	Attempted []string
	// Last is the final attempt's error.
	Last error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("%s: all %d attempts failed [%s]", e.Scope, len(e.Attempted), strings.Join(e.Attempted, ", "))
	if e.Last != nil {
		msg += ": last error: " + e.Last.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error { return e.Last }
