// Package utils holds small parsing helpers for request parameters.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as a decimal int, returning def for empty or
// unparsable input. Whitespace is not trimmed.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if s == "" || err != nil {
		return def
	}
	return n
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ParseID parses a positive decimal identifier such as a path parameter.
// Surrounding whitespace is ignored; zero, negatives and junk are rejected.
func ParseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
