// ABOUTME: Node is the atomic unit of work with a prepare/exec/post lifecycle.
// ABOUTME: Exec runs under a bounded retry policy with a required recover function.
package flow

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// Step is a runnable unit inside a flow. Both Node and Flow implement it,
// which is what allows a flow to be nested as a step of another flow.
type Step[S any] interface {
	// Name returns the step's identity within its flow.
	Name() string

	// Run executes the step against the shared state and returns the action
	// label used to select the next transition.
	Run(ctx context.Context, state S) (Action, error)
}

// PrepFunc gathers the step's inputs from the shared state.
type PrepFunc[S any] func(ctx context.Context, state S) (any, error)

// ExecFunc performs the step's work. It receives only the prepared inputs so
// that a retried attempt sees exactly what the first attempt saw; it should
// not touch the shared state.
type ExecFunc func(ctx context.Context, prep any) (any, error)

// PostFunc folds the exec result back into the shared state and returns the
// action label for edge selection. Returning the empty action means Default.
type PostFunc[S any] func(ctx context.Context, state S, prep, result any) (Action, error)

// RecoverFunc is invoked with the prepared inputs and the final error after
// exec has exhausted its attempts. Its return value substitutes for the exec
// result so post still runs. Returning an error aborts the step (and the
// enclosing flow).
type RecoverFunc func(prep any, execErr error) (any, error)

// Reraise is the explicit "no fallback" RecoverFunc: it propagates the exec
// error unchanged. Every node must choose a RecoverFunc; use Reraise when
// exhausted retries should abort the run.
func Reraise(_ any, execErr error) (any, error) {
	return nil, execErr
}

// NodeSpec describes a Node. Prep, Exec, and Post are optional (a nil Post
// emits Default); Recover is required so that "no fallback" is a visible
// choice rather than an implicit absence.
type NodeSpec[S any] struct {
	Name        string
	MaxAttempts int           // exec attempts before Recover runs; min 1 (0 means 1)
	Wait        time.Duration // fixed pause between attempts; 0 means none
	Emits       []Action      // closed set of actions Post may return; empty means {Default}
	Prep        PrepFunc[S]
	Exec        ExecFunc
	Post        PostFunc[S]
	Recover     RecoverFunc
}

// Node is a three-phase unit of work: prepare gathers inputs from the shared
// state, exec does the work under the retry policy, and post writes results
// back and picks the next action.
type Node[S any] struct {
	spec NodeSpec[S]
}

// NewNode builds a Node from its spec. It returns an error for a missing
// name or a missing Recover function.
func NewNode[S any](spec NodeSpec[S]) (*Node[S], error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("node spec has no name")
	}
	if spec.Recover == nil {
		return nil, fmt.Errorf("node %q has no Recover function (use flow.Reraise to propagate)", spec.Name)
	}
	if spec.MaxAttempts < 1 {
		spec.MaxAttempts = 1
	}
	if len(spec.Emits) == 0 {
		spec.Emits = []Action{Default}
	}
	return &Node[S]{spec: spec}, nil
}

// MustNode is NewNode for statically-known specs; it panics on a bad spec.
func MustNode[S any](spec NodeSpec[S]) *Node[S] {
	n, err := NewNode(spec)
	if err != nil {
		panic(err)
	}
	return n
}

// Name returns the node's identity.
func (n *Node[S]) Name() string { return n.spec.Name }

// Emits returns the node's declared action set.
func (n *Node[S]) Emits() []Action { return n.spec.Emits }

// Run executes the full lifecycle without an event sink. Flows use
// runObserved so retries and recoveries surface as events.
func (n *Node[S]) Run(ctx context.Context, state S) (Action, error) {
	return n.runObserved(ctx, state, nil)
}

func (n *Node[S]) runObserved(ctx context.Context, state S, emit func(Event)) (Action, error) {
	var prep any
	if n.spec.Prep != nil {
		p, err := n.spec.Prep(ctx, state)
		if err != nil {
			return "", fmt.Errorf("node %q prepare: %w", n.spec.Name, err)
		}
		prep = p
	}

	result, err := execWithRetry(ctx, n.spec.Name, n.spec.MaxAttempts, n.spec.Wait, n.spec.Exec, n.spec.Recover, prep, emit)
	if err != nil {
		return "", fmt.Errorf("node %q: %w", n.spec.Name, err)
	}

	if n.spec.Post == nil {
		return Default, nil
	}
	action, err := n.spec.Post(ctx, state, prep, result)
	if err != nil {
		return "", fmt.Errorf("node %q post: %w", n.spec.Name, err)
	}
	if action == "" {
		action = Default
	}
	return action, nil
}

// execWithRetry runs exec up to maxAttempts times, pausing wait between
// attempts, then hands the final error to rec. Panics in exec are converted
// to errors so one misbehaving step cannot crash the engine.
func execWithRetry(
	ctx context.Context,
	name string,
	maxAttempts int,
	wait time.Duration,
	exec ExecFunc,
	rec RecoverFunc,
	prep any,
	emit func(Event),
) (any, error) {
	if exec == nil {
		return prep, nil
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := safeExec(ctx, exec, prep)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < maxAttempts {
			if emit != nil {
				emit(Event{Type: EventStepRetrying, Step: name, Attempt: attempt, Err: err.Error()})
			}
			sleepWithContext(ctx, wait)
		}
	}

	result, err := rec(prep, lastErr)
	if err != nil {
		return nil, fmt.Errorf("exec failed after %d attempt(s): %w", maxAttempts, err)
	}
	if emit != nil {
		emit(Event{Type: EventStepRecovered, Step: name, Err: lastErr.Error()})
	}
	return result, nil
}

// safeExec wraps exec with panic recovery, converting panics into errors.
// The stack trace is included to aid debugging.
func safeExec(ctx context.Context, exec ExecFunc, prep any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exec panic: %v\n%s", r, debug.Stack())
			result = nil
		}
	}()
	return exec(ctx, prep)
}

// sleepWithContext pauses for d, returning early if the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
