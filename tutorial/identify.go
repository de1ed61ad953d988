// ABOUTME: Identify stage: asks the LLM for the codebase's core abstractions.
// ABOUTME: Parsing and index validation run inside exec so a malformed reply is re-prompted.
package tutorial

import (
	"context"
	"fmt"

	"github.com/fieldguide-ai/fieldguide/flow"
)

type identifyInputs struct {
	call      llmCall
	fileCount int
	maxWanted int
}

// rawAbstraction mirrors the YAML shape the prompt requests. FileIndexes stays
// untyped because models sometimes echo "idx # path" labels instead of bare ints.
type rawAbstraction struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	FileIndexes []any  `yaml:"file_indexes"`
}

func identifyStage(rc retryConfig) *flow.Node[*State] {
	return flow.MustNode(flow.NodeSpec[*State]{
		Name:        "identify",
		MaxAttempts: rc.attempts,
		Wait:        rc.wait,
		Prep: func(ctx context.Context, s *State) (any, error) {
			return identifyInputs{
				call:      s.newCall(s.identifyPrompt()),
				fileCount: len(s.Files),
				maxWanted: s.MaxAbstractions,
			}, nil
		},
		Exec: func(ctx context.Context, prep any) (any, error) {
			in := prep.(identifyInputs)
			reply, err := in.call.complete(ctx)
			if err != nil {
				return nil, err
			}

			var raw []rawAbstraction
			if err := decodeYAML(reply, &raw); err != nil {
				return nil, err
			}
			if len(raw) == 0 {
				return nil, fmt.Errorf("reply lists no abstractions")
			}
			if in.maxWanted > 0 && len(raw) > in.maxWanted {
				raw = raw[:in.maxWanted]
			}

			abstractions := make([]Abstraction, 0, len(raw))
			for i, r := range raw {
				if r.Name == "" {
					return nil, fmt.Errorf("abstraction %d has no name", i)
				}
				indexes, err := parseIndexList(r.FileIndexes, in.fileCount)
				if err != nil {
					return nil, fmt.Errorf("abstraction %q: %w", r.Name, err)
				}
				abstractions = append(abstractions, Abstraction{
					Name:        r.Name,
					Description: r.Description,
					FileIndexes: indexes,
				})
			}
			return abstractions, nil
		},
		Post: func(ctx context.Context, s *State, prep, result any) (flow.Action, error) {
			s.Abstractions = result.([]Abstraction)
			return flow.Default, nil
		},
		Recover: flow.Reraise,
	})
}
