// ABOUTME: Combine stage: assembles the index page and persists the tutorial files.
package tutorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldguide-ai/fieldguide/flow"
	"github.com/fieldguide-ai/fieldguide/output"
)

type combineInputs struct {
	writer output.Writer
	docs   []output.Document
}

func combineStage() *flow.Node[*State] {
	return flow.MustNode(flow.NodeSpec[*State]{
		Name: "combine",
		Prep: func(ctx context.Context, s *State) (any, error) {
			if s.Writer == nil {
				return nil, fmt.Errorf("no output writer configured")
			}
			docs := make([]output.Document, 0, len(s.Chapters)+1)
			docs = append(docs, output.Document{Filename: "index.md", Content: s.indexPage()})
			for _, ch := range s.Chapters {
				docs = append(docs, output.Document{Filename: ch.Filename, Content: ch.Content})
			}
			return combineInputs{writer: s.Writer, docs: docs}, nil
		},
		Exec: func(ctx context.Context, prep any) (any, error) {
			in := prep.(combineInputs)
			return in.docs, in.writer.Write(in.docs)
		},
		Post: func(ctx context.Context, s *State, prep, result any) (flow.Action, error) {
			docs := result.([]output.Document)
			s.WrittenFiles = make([]string, len(docs))
			for i, d := range docs {
				s.WrittenFiles[i] = d.Filename
			}
			return flow.Default, nil
		},
		Recover: flow.Reraise,
	})
}

// indexPage renders index.md: summary, a relationship diagram, and the chapter
// listing with failed chapters flagged.
func (s *State) indexPage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tutorial: %s\n\n%s\n\n", s.ProjectName, strings.TrimSpace(s.ProjectSummary))

	if len(s.Relationships) > 0 {
		b.WriteString("```mermaid\nflowchart TD\n")
		for i, a := range s.Abstractions {
			fmt.Fprintf(&b, "    A%d[%q]\n", i, a.Name)
		}
		for _, r := range s.Relationships {
			fmt.Fprintf(&b, "    A%d -- %q --> A%d\n", r.From, r.Label, r.To)
		}
		b.WriteString("```\n\n")
	}

	b.WriteString("## Chapters\n\n")
	for _, ch := range s.Chapters {
		fmt.Fprintf(&b, "%d. [%s](%s)", ch.Number, ch.Title, ch.Filename)
		if ch.Failed {
			b.WriteString(" *(generation failed)*")
		}
		b.WriteString("\n")
	}
	return b.String()
}
