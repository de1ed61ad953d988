// ABOUTME: Batch applies the node lifecycle's exec phase to each element of a prepared sequence.
// ABOUTME: Each element retries and recovers independently; results keep input order.
package flow

import (
	"context"
	"fmt"
	"time"
)

// BatchSpec describes a Batch step. Prep produces the element sequence, Exec
// runs once per element under the same retry/recover contract a Node uses,
// and Post receives the ordered result sequence.
type BatchSpec[S any] struct {
	Name        string
	MaxAttempts int           // per-element exec attempts; min 1
	Wait        time.Duration // fixed pause between attempts
	Emits       []Action
	Prep        func(ctx context.Context, state S) ([]any, error)
	Exec        ExecFunc
	Post        func(ctx context.Context, state S, items []any, results []any) (Action, error)
	Recover     RecoverFunc
}

// Batch is a step whose exec phase fans out over a prepared sequence. One
// element exhausting its retries does not abort its siblings as long as
// Recover substitutes a result; a Recover that re-raises aborts the batch.
type Batch[S any] struct {
	spec BatchSpec[S]
}

// NewBatch builds a Batch from its spec, with the same requirements as NewNode.
func NewBatch[S any](spec BatchSpec[S]) (*Batch[S], error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("batch spec has no name")
	}
	if spec.Recover == nil {
		return nil, fmt.Errorf("batch %q has no Recover function (use flow.Reraise to propagate)", spec.Name)
	}
	if spec.MaxAttempts < 1 {
		spec.MaxAttempts = 1
	}
	if len(spec.Emits) == 0 {
		spec.Emits = []Action{Default}
	}
	return &Batch[S]{spec: spec}, nil
}

// MustBatch is NewBatch for statically-known specs; it panics on a bad spec.
func MustBatch[S any](spec BatchSpec[S]) *Batch[S] {
	b, err := NewBatch(spec)
	if err != nil {
		panic(err)
	}
	return b
}

// Name returns the batch step's identity.
func (b *Batch[S]) Name() string { return b.spec.Name }

// Emits returns the batch step's declared action set.
func (b *Batch[S]) Emits() []Action { return b.spec.Emits }

// Run executes the batch lifecycle without an event sink.
func (b *Batch[S]) Run(ctx context.Context, state S) (Action, error) {
	return b.runObserved(ctx, state, nil)
}

func (b *Batch[S]) runObserved(ctx context.Context, state S, emit func(Event)) (Action, error) {
	var items []any
	if b.spec.Prep != nil {
		prepared, err := b.spec.Prep(ctx, state)
		if err != nil {
			return "", fmt.Errorf("batch %q prepare: %w", b.spec.Name, err)
		}
		items = prepared
	}

	// Elements run strictly in order; each carries its own retry accounting.
	results := make([]any, 0, len(items))
	for i, item := range items {
		elem := fmt.Sprintf("%s[%d]", b.spec.Name, i)
		result, err := execWithRetry(ctx, elem, b.spec.MaxAttempts, b.spec.Wait, b.spec.Exec, b.spec.Recover, item, emit)
		if err != nil {
			return "", fmt.Errorf("batch %q element %d: %w", b.spec.Name, i, err)
		}
		results = append(results, result)
	}

	if b.spec.Post == nil {
		return Default, nil
	}
	action, err := b.spec.Post(ctx, state, items, results)
	if err != nil {
		return "", fmt.Errorf("batch %q post: %w", b.spec.Name, err)
	}
	if action == "" {
		action = Default
	}
	return action, nil
}
