// ABOUTME: LLM client middleware that serves completions from the prompt cache.
// ABOUTME: NoCache requests skip lookup (forcing a live call) but their results are still recorded.
package cache

import (
	"context"
	"strings"

	"github.com/fieldguide-ai/fieldguide/llm"
)

// Key derives the cache key from the exact request payload. Two requests
// collide only when provider, model, system prompt, and prompt all match.
func Key(req llm.Request) string {
	return strings.Join([]string{req.Provider, req.Model, req.System, req.Prompt}, "\x1f")
}

// Middleware returns llm middleware that consults the cache before invoking
// the provider and records every live response. A request with NoCache set
// always reaches the provider, even when an identical entry exists; its
// response still lands in the cache for later calls.
func Middleware(c *Cache) llm.Middleware {
	return func(ctx context.Context, req llm.Request, next llm.NextFunc) (*llm.Response, error) {
		key := Key(req)

		if !req.NoCache {
			if text, ok := c.Get(key); ok {
				return &llm.Response{
					Text:     text,
					Provider: req.Provider,
					Model:    req.Model,
					Cached:   true,
				}, nil
			}
		}

		resp, err := next(ctx, req)
		if err != nil {
			return nil, err
		}
		c.Put(key, resp.Text)
		return resp, nil
	}
}
