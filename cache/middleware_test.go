// ABOUTME: Tests for the cache middleware covering hit short-circuiting and NoCache semantics.
// ABOUTME: A counting collaborator verifies when the provider is actually reached.
package cache

import (
	"context"
	"testing"

	"github.com/fieldguide-ai/fieldguide/llm"
)

// countingNext is a NextFunc standing in for the provider call.
func countingNext(calls *int, text string) llm.NextFunc {
	return func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		*calls++
		return &llm.Response{Text: text, Provider: req.Provider, Model: req.Model}, nil
	}
}

func TestMiddlewareSecondCallNeverReachesProvider(t *testing.T) {
	c := Open(nil)
	mw := Middleware(c)
	req := llm.Request{Provider: "p", Model: "m", Prompt: "describe the parser"}

	calls := 0
	next := countingNext(&calls, "the parser reads tokens")

	first, err := mw(context.Background(), req, next)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := mw(context.Background(), req, next)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if calls != 1 {
		t.Errorf("provider reached %d times, want 1", calls)
	}
	if second.Text != first.Text {
		t.Errorf("cached text %q differs from stored %q", second.Text, first.Text)
	}
	if !second.Cached || first.Cached {
		t.Errorf("Cached flags = first %v second %v, want false/true", first.Cached, second.Cached)
	}
}

func TestMiddlewareDistinctRequestsMiss(t *testing.T) {
	c := Open(nil)
	mw := Middleware(c)

	calls := 0
	next := countingNext(&calls, "reply")

	base := llm.Request{Provider: "p", Model: "m", Prompt: "q"}
	variants := []llm.Request{
		base,
		{Provider: "other", Model: "m", Prompt: "q"},
		{Provider: "p", Model: "other", Prompt: "q"},
		{Provider: "p", Model: "m", Prompt: "other"},
	}
	for _, req := range variants {
		if _, err := mw(context.Background(), req, next); err != nil {
			t.Fatal(err)
		}
	}
	if calls != len(variants) {
		t.Errorf("provider reached %d times, want %d (all keys distinct)", calls, len(variants))
	}
}

func TestMiddlewareNoCacheForcesLiveCall(t *testing.T) {
	c := Open(nil)
	mw := Middleware(c)

	calls := 0
	cached := llm.Request{Provider: "p", Model: "m", Prompt: "q"}
	if _, err := mw(context.Background(), cached, countingNext(&calls, "stale")); err != nil {
		t.Fatal(err)
	}

	// Identical request with NoCache must reach the provider despite the hit...
	bypass := cached
	bypass.NoCache = true
	resp, err := mw(context.Background(), bypass, countingNext(&calls, "fresh"))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("provider reached %d times, want 2 (NoCache must force a live call)", calls)
	}
	if resp.Text != "fresh" || resp.Cached {
		t.Errorf("bypass response = %+v, want live fresh text", resp)
	}

	// ...and its result is still stored for subsequent cached calls.
	after, err := mw(context.Background(), cached, countingNext(&calls, "unused"))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("provider reached %d times, want 2 (live result should now be cached)", calls)
	}
	if after.Text != "fresh" || !after.Cached {
		t.Errorf("post-bypass response = %+v, want cached fresh text", after)
	}
}

func TestMiddlewareDoesNotCacheErrors(t *testing.T) {
	c := Open(nil)
	mw := Middleware(c)
	req := llm.Request{Provider: "p", Model: "m", Prompt: "q"}

	failing := func(ctx context.Context, r llm.Request) (*llm.Response, error) {
		return nil, &llm.ClientError{Message: "boom"}
	}
	if _, err := mw(context.Background(), req, failing); err == nil {
		t.Fatal("expected error")
	}
	if c.Len() != 0 {
		t.Errorf("error was cached: %d entries", c.Len())
	}
}
