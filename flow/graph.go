// ABOUTME: Flow is a directed graph of steps connected by action-labeled edges.
// ABOUTME: Run walks the graph from the entry step until no outgoing edge matches the returned action.
package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// maxSteps bounds a single walk so a cyclic transition table cannot spin forever.
const maxSteps = 10000

// Flow is a directed graph of steps. Edges are keyed by (source step, action
// label); the walk runs each step's full lifecycle, follows the edge matching
// the returned action (falling back to the Default edge), and terminates
// without error when neither exists.
//
// A Flow is itself a Step, so it can be connected as a unit inside another
// flow. Its Run returns the action emitted by the last step of the walk,
// which is what the outer flow routes on.
type Flow[S any] struct {
	name  string
	entry Step[S]
	steps map[string]Step[S]
	edges map[string]map[Action]Step[S]

	// Events, when set, receives lifecycle events during Run.
	Events func(Event)
}

// NewFlow creates a flow starting at the given entry step.
func NewFlow[S any](name string, entry Step[S]) *Flow[S] {
	f := &Flow[S]{
		name:  name,
		entry: entry,
		steps: make(map[string]Step[S]),
		edges: make(map[string]map[Action]Step[S]),
	}
	f.steps[entry.Name()] = entry
	return f
}

// Name returns the flow's identity, making Flow usable as a nested Step.
func (f *Flow[S]) Name() string { return f.name }

// Connect registers the edge (from, on) -> to. Registering a second edge for
// the same (from, on) pair replaces the first; last registration wins. This
// mirrors plain map assignment and is relied on by callers that override a
// stock transition, so it is deliberate rather than an error.
func (f *Flow[S]) Connect(from Step[S], on Action, to Step[S]) {
	if on == "" {
		on = Default
	}
	f.steps[from.Name()] = from
	f.steps[to.Name()] = to
	m, ok := f.edges[from.Name()]
	if !ok {
		m = make(map[Action]Step[S])
		f.edges[from.Name()] = m
	}
	m[on] = to
}

// Then registers the Default edge from -> to and returns to, allowing linear
// pipelines to be chained in a single expression.
func (f *Flow[S]) Then(from, to Step[S]) Step[S] {
	f.Connect(from, Default, to)
	return to
}

// Problem is a transition-table defect reported by Validate.
type Problem struct {
	Severity string // "error" or "warning"
	Step     string
	Message  string
}

// emitter is implemented by steps that declare a closed action set.
type emitter interface {
	Emits() []Action
}

// Validate checks the transition table against each step's declared action
// set. An edge labeled with an action its source never emits is an error; a
// declared non-Default action with no edge is a warning (the walk would
// terminate there, which may or may not be intended).
func (f *Flow[S]) Validate() []Problem {
	var problems []Problem
	for name, step := range f.steps {
		em, ok := step.(emitter)
		if !ok {
			continue
		}
		declared := make(map[Action]bool, len(em.Emits()))
		for _, a := range em.Emits() {
			declared[a] = true
		}
		for on := range f.edges[name] {
			if !declared[on] {
				problems = append(problems, Problem{
					Severity: "error",
					Step:     name,
					Message:  fmt.Sprintf("edge on action %q which step %q never emits", on, name),
				})
			}
		}
		for _, a := range em.Emits() {
			if a == Default {
				continue
			}
			if _, routed := f.edges[name][a]; !routed {
				if _, hasDefault := f.edges[name][Default]; !hasDefault {
					problems = append(problems, Problem{
						Severity: "warning",
						Step:     name,
						Message:  fmt.Sprintf("action %q terminates the flow (no edge, no default)", a),
					})
				}
			}
		}
	}
	return problems
}

// Run walks the graph from the entry step. It returns the action emitted by
// the final step, or the first unrecovered step error, which aborts the walk
// immediately and propagates up through any enclosing flows.
func (f *Flow[S]) Run(ctx context.Context, state S) (Action, error) {
	runID := uuid.NewString()
	f.emit(Event{Type: EventFlowStarted, RunID: runID})

	current := f.entry
	var lastAction Action

	for i := 0; ; i++ {
		if i >= maxSteps {
			err := fmt.Errorf("flow %q exceeded %d steps, possible transition cycle", f.name, maxSteps)
			f.emit(Event{Type: EventFlowFailed, RunID: runID, Err: err.Error()})
			return "", err
		}

		select {
		case <-ctx.Done():
			f.emit(Event{Type: EventFlowFailed, RunID: runID, Err: ctx.Err().Error()})
			return "", ctx.Err()
		default:
		}

		f.emit(Event{Type: EventStepStarted, RunID: runID, Step: current.Name()})

		action, err := f.runStep(ctx, current, state, runID)
		if err != nil {
			f.emit(Event{Type: EventStepFailed, RunID: runID, Step: current.Name(), Err: err.Error()})
			f.emit(Event{Type: EventFlowFailed, RunID: runID, Err: err.Error()})
			return "", err
		}

		f.emit(Event{Type: EventStepCompleted, RunID: runID, Step: current.Name(), Action: action})
		lastAction = action

		next := f.next(current.Name(), action)
		if next == nil {
			// Terminal state: no matching edge and no default edge.
			break
		}
		current = next
	}

	f.emit(Event{Type: EventFlowCompleted, RunID: runID, Action: lastAction})
	return lastAction, nil
}

// runStep dispatches to the observed runner for node and batch steps so their
// retry and recovery activity surfaces as events; other steps (nested flows)
// run plainly and report through their own event callback.
func (f *Flow[S]) runStep(ctx context.Context, step Step[S], state S, runID string) (Action, error) {
	emit := func(e Event) {
		e.RunID = runID
		f.emit(e)
	}
	switch s := step.(type) {
	case *Node[S]:
		return s.runObserved(ctx, state, emit)
	case *Batch[S]:
		return s.runObserved(ctx, state, emit)
	default:
		return step.Run(ctx, state)
	}
}

// next selects the outgoing edge for the action, falling back to the Default
// edge, or nil when the step is terminal for this action.
func (f *Flow[S]) next(from string, action Action) Step[S] {
	m := f.edges[from]
	if m == nil {
		return nil
	}
	if to, ok := m[action]; ok {
		return to
	}
	return m[Default]
}

func (f *Flow[S]) emit(e Event) {
	if f.Events == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	f.Events(e)
}
