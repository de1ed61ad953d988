// ABOUTME: Gather stage: crawls the configured source into State.Files.
package tutorial

import (
	"context"
	"fmt"

	"github.com/fieldguide-ai/fieldguide/crawl"
	"github.com/fieldguide-ai/fieldguide/flow"
)

type gatherInputs struct {
	source crawl.Source
	opts   crawl.Options
}

// gatherStage fetches the codebase. Source failures (missing directory,
// unreachable repository) are fatal; there is nothing useful to retry.
func gatherStage() *flow.Node[*State] {
	return flow.MustNode(flow.NodeSpec[*State]{
		Name: "gather",
		Prep: func(ctx context.Context, s *State) (any, error) {
			if s.Source == nil {
				return nil, fmt.Errorf("no source configured")
			}
			return gatherInputs{source: s.Source, opts: s.CrawlOptions}, nil
		},
		Exec: func(ctx context.Context, prep any) (any, error) {
			in := prep.(gatherInputs)
			return in.source.Files(ctx, in.opts)
		},
		Post: func(ctx context.Context, s *State, prep, result any) (flow.Action, error) {
			files := result.([]crawl.File)
			if len(files) == 0 {
				return "", fmt.Errorf("no files matched the include/exclude patterns")
			}
			s.Files = files
			return flow.Default, nil
		},
		Recover: flow.Reraise,
	})
}
