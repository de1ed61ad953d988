// ABOUTME: Core request/response types and the Provider interface for the unified LLM client.
// ABOUTME: A Request is a single prompt completion; providers translate it to their wire format.
package llm

import "context"

// Request is a single prompt completion request. Provider selects which
// registered adapter handles it (empty means the client default). NoCache
// forces a live call even when an identical request is cached; the result is
// still recorded for later calls.
type Request struct {
	Provider    string
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature *float64
	NoCache     bool
}

// Response is the provider's reply to a Request.
type Response struct {
	Text     string
	Model    string
	Provider string
	Usage    Usage
	// Cached is true when the response was served from the prompt cache
	// without reaching the provider.
	Cached bool
}

// Usage reports token accounting for a completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is a backend capable of completing requests. Implementations
// translate the unified Request into their own API format.
type Provider interface {
	// Name returns the provider's registry name (e.g. "openrouter").
	Name() string

	// Complete sends the request and blocks until the full response arrives.
	Complete(ctx context.Context, req Request) (*Response, error)
}
