// ABOUTME: Typed shared state for the tutorial pipeline, populated stage by stage.
// ABOUTME: Each stage reads the fields its predecessors wrote and fills in its own.
package tutorial

import (
	"context"
	"fmt"

	"github.com/fieldguide-ai/fieldguide/crawl"
	"github.com/fieldguide-ai/fieldguide/llm"
	"github.com/fieldguide-ai/fieldguide/output"
)

// Abstraction is one key concept the LLM identified in the codebase.
// FileIndexes reference positions in State.Files.
type Abstraction struct {
	Name        string
	Description string
	FileIndexes []int
}

// Relationship is a directed edge between two abstractions, by index.
type Relationship struct {
	From  int
	To    int
	Label string
}

// Chapter is one generated tutorial chapter. Failed marks a chapter whose
// generation exhausted its retries and fell back to placeholder content.
type Chapter struct {
	Number           int // 1-based position in the tutorial
	AbstractionIndex int
	Title            string
	Filename         string
	Content          string
	Failed           bool
}

// State is the shared context for one pipeline run. It is created once at
// the start, passed by reference through every stage, and discarded when the
// run ends. Fields are grouped by the stage that writes them; nothing is
// ever cleared mid-run.
type State struct {
	// Run inputs.
	ProjectName     string
	Source          crawl.Source
	CrawlOptions    crawl.Options
	Client          *llm.Client
	Provider        string
	Model           string
	UseCache        bool
	Language        string // natural language for the tutorial; empty means English
	MaxAbstractions int
	Writer          output.Writer

	// Written by the gather stage.
	Files []crawl.File

	// Written by the identify stage.
	Abstractions []Abstraction

	// Written by the relationships stage.
	ProjectSummary string
	Relationships  []Relationship

	// Written by the order stage: a permutation of abstraction indexes.
	ChapterOrder []int

	// Written by the chapters stage, in ChapterOrder order.
	Chapters []Chapter

	// Written by the combine stage.
	WrittenFiles []string
}

// llmCall carries everything a stage's exec phase needs to complete a
// prompt, so exec never has to read the shared state.
type llmCall struct {
	client  *llm.Client
	request llm.Request
}

// newCall builds an llmCall for the run's configured provider and model.
func (s *State) newCall(prompt string) llmCall {
	return llmCall{
		client: s.Client,
		request: llm.Request{
			Provider: s.Provider,
			Model:    s.Model,
			Prompt:   prompt,
			NoCache:  !s.UseCache,
		},
	}
}

// complete executes the call and returns the reply text.
func (c llmCall) complete(ctx context.Context) (string, error) {
	resp, err := c.client.Complete(ctx, c.request)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// fileLabel renders "index # path" the way prompts reference files.
func (s *State) fileLabel(i int) string {
	return fmt.Sprintf("%d # %s", i, s.Files[i].Path)
}
