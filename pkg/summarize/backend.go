package summarize

import (
	"context"
	"errors"
)

// Request is one summarization call.
type Request struct {
	// Prompt is an optional instruction sent ahead of Text.
	Prompt string
	Text   string

	// Length bounds in tokens.
	MaxTokens int
	MinTokens int

	// Beams and Sample mirror beam-search decoding knobs. Backends that have
	// no such knobs map Sample=false to deterministic decoding.
	Beams  int
	Sample bool
}

// Backend produces an abstractive summary.
type Backend interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, req Request) (string, error)

// Summarize implements Backend.
func (f BackendFunc) Summarize(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrNoBackend is returned by a Loader when no abstractive backend is
// configured for the requested model.
var ErrNoBackend = errors.New("no summarizer backend configured")
