package llm

import (
	"context"
	"fmt"
)

// Options tune a single completion request.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Client is the narrow chat-completion contract the detection core depends
// on. A single text completion is enough; streaming is not used.
type Client interface {
	// Complete sends one system+user prompt pair and returns the raw text of
	// the first completion choice.
	Complete(ctx context.Context, system, user string, opts Options) (string, error)
	// Model returns the model identifier requests are sent with.
	Model() string
}

// ProviderError wraps a failure at the LLM provider boundary so phases can
// absorb it and degrade instead of aborting the report.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
