// ABOUTME: Compiles the six tutorial stages into a runnable flow.
package tutorial

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldguide-ai/fieldguide/flow"
)

// DefaultMaxAbstractions bounds the identify stage when the caller does not.
const DefaultMaxAbstractions = 10

// retryConfig is the engine retry policy for the LLM-backed stages. The wait
// is long because the usual transient failure here is a provider rate limit.
type retryConfig struct {
	attempts int
	wait     time.Duration
}

var defaultRetry = retryConfig{attempts: 3, wait: 10 * time.Second}

// Build compiles the pipeline into a flow over the run state. The stages are
// strictly linear; branching lives inside each stage's retry and recovery
// behavior, not in the transition table.
func Build() *flow.Flow[*State] {
	return build(defaultRetry)
}

func build(rc retryConfig) *flow.Flow[*State] {
	gather := gatherStage()
	f := flow.NewFlow("tutorial", gather)

	identify := f.Then(gather, identifyStage(rc))
	relationships := f.Then(identify, relationshipsStage(rc))
	order := f.Then(relationships, orderStage(rc))
	chapters := f.Then(order, chaptersStage(rc))
	f.Then(chapters, combineStage())

	return f
}

// Generate runs the full pipeline against the state. Events, when non-nil,
// receives engine lifecycle events for progress reporting.
func Generate(ctx context.Context, s *State, events func(flow.Event)) error {
	if s.MaxAbstractions <= 0 {
		s.MaxAbstractions = DefaultMaxAbstractions
	}
	if s.Client == nil {
		return fmt.Errorf("no LLM client configured")
	}

	f := Build()
	f.Events = events
	for _, p := range f.Validate() {
		if p.Severity == "error" {
			return fmt.Errorf("pipeline graph: %s", p.Message)
		}
	}
	if _, err := f.Run(ctx, s); err != nil {
		return err
	}
	return nil
}
