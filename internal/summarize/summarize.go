// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize condenses a paper's raw text into bullet-point prose
// through an external model-serving endpoint.
package summarize

import (
	"context"
	"fmt"
)

// Backend abstracts the summarization capability so tests can supply a mock.
// Implementations return the generated prose for one paper, or an *Error.
type Backend interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Error is the typed failure for one summarization call. It is recovered at
// the per-paper level: the paper is marked failed and the batch continues.
type Error struct {
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarization with %s failed: %v", e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
