// ABOUTME: Order stage: decides the chapter teaching order.
// ABOUTME: The reply must be an exact permutation of the abstraction indexes.
package tutorial

import (
	"context"

	"github.com/fieldguide-ai/fieldguide/flow"
)

type orderInputs struct {
	call  llmCall
	count int
}

func orderStage(rc retryConfig) *flow.Node[*State] {
	return flow.MustNode(flow.NodeSpec[*State]{
		Name:        "order",
		MaxAttempts: rc.attempts,
		Wait:        rc.wait,
		Prep: func(ctx context.Context, s *State) (any, error) {
			return orderInputs{
				call:  s.newCall(s.orderPrompt()),
				count: len(s.Abstractions),
			}, nil
		},
		Exec: func(ctx context.Context, prep any) (any, error) {
			in := prep.(orderInputs)
			reply, err := in.call.complete(ctx)
			if err != nil {
				return nil, err
			}

			var raw []any
			if err := decodeYAML(reply, &raw); err != nil {
				return nil, err
			}
			order, err := parseIndexList(raw, in.count)
			if err != nil {
				return nil, err
			}
			// Duplicates or omissions would silently drop or repeat chapters,
			// so anything short of a full permutation fails the stage.
			if err := validatePermutation(order, in.count); err != nil {
				return nil, err
			}
			return order, nil
		},
		Post: func(ctx context.Context, s *State, prep, result any) (flow.Action, error) {
			s.ChapterOrder = result.([]int)
			return flow.Default, nil
		},
		Recover: flow.Reraise,
	})
}
