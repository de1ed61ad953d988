// ABOUTME: Relationships stage: summarizes the project and maps how abstractions interact.
package tutorial

import (
	"context"
	"fmt"

	"github.com/fieldguide-ai/fieldguide/flow"
)

type relationshipsInputs struct {
	call  llmCall
	count int // abstraction count, for index validation
}

type rawRelationships struct {
	Summary       string `yaml:"summary"`
	Relationships []struct {
		From  any    `yaml:"from"`
		To    any    `yaml:"to"`
		Label string `yaml:"label"`
	} `yaml:"relationships"`
}

type relationshipsResult struct {
	summary string
	edges   []Relationship
}

func relationshipsStage(rc retryConfig) *flow.Node[*State] {
	return flow.MustNode(flow.NodeSpec[*State]{
		Name:        "relationships",
		MaxAttempts: rc.attempts,
		Wait:        rc.wait,
		Prep: func(ctx context.Context, s *State) (any, error) {
			return relationshipsInputs{
				call:  s.newCall(s.relationshipsPrompt()),
				count: len(s.Abstractions),
			}, nil
		},
		Exec: func(ctx context.Context, prep any) (any, error) {
			in := prep.(relationshipsInputs)
			reply, err := in.call.complete(ctx)
			if err != nil {
				return nil, err
			}

			var raw rawRelationships
			if err := decodeYAML(reply, &raw); err != nil {
				return nil, err
			}
			if raw.Summary == "" {
				return nil, fmt.Errorf("reply has no project summary")
			}

			edges := make([]Relationship, 0, len(raw.Relationships))
			for i, r := range raw.Relationships {
				from, err := parseIndex(r.From, in.count)
				if err != nil {
					return nil, fmt.Errorf("relationship %d: %w", i, err)
				}
				to, err := parseIndex(r.To, in.count)
				if err != nil {
					return nil, fmt.Errorf("relationship %d: %w", i, err)
				}
				edges = append(edges, Relationship{From: from, To: to, Label: r.Label})
			}
			if len(edges) == 0 {
				return nil, fmt.Errorf("reply lists no relationships")
			}
			return relationshipsResult{summary: raw.Summary, edges: edges}, nil
		},
		Post: func(ctx context.Context, s *State, prep, result any) (flow.Action, error) {
			r := result.(relationshipsResult)
			s.ProjectSummary = r.summary
			s.Relationships = r.edges
			return flow.Default, nil
		},
		Recover: flow.Reraise,
	})
}
