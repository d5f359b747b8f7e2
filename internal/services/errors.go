// Package services defines the business logic for turning issues into
// cached, translated artifacts. This file centralizes service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrIssueNotFound indicates that the requested issue does not exist.
	ErrIssueNotFound = errors.New("issue not found")

	// ErrInvalidKind is returned for an unknown content kind.
	ErrInvalidKind = errors.New("invalid content kind")

	// ErrInvalidMode is returned for an unknown language mode.
	ErrInvalidMode = errors.New("invalid language mode")

	// ErrEmptySource is returned when the issue has no text to derive the
	// requested kind from.
	ErrEmptySource = errors.New("issue has no text for this content kind")

	// ErrGenerationFailed wraps the provider error when the source-language
	// artifact could not be produced. Runs ending with it send nothing.
	ErrGenerationFailed = errors.New("source generation failed")

	// ErrBusy is returned when the background generation queue is full.
	ErrBusy = errors.New("generation queue is full")

	// ErrEmptyBatch is returned for a batch without issue ids.
	ErrEmptyBatch = errors.New("batch has no issue ids")

	// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize.
	ErrBatchTooLarge = errors.New("batch is too large")

	// ErrShuttingDown is returned for requests made after Close.
	ErrShuttingDown = errors.New("orchestrator is shutting down")
)
