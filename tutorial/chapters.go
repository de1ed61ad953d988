// ABOUTME: Chapters stage: a batch that writes one tutorial chapter per ordered abstraction.
// ABOUTME: A chapter that exhausts its retries degrades to a placeholder instead of aborting the run.
package tutorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldguide-ai/fieldguide/flow"
)

// chapterItem is one batch element: everything needed to generate a single
// chapter, captured at prepare time.
type chapterItem struct {
	call             llmCall
	number           int
	abstractionIndex int
	title            string
	filename         string
}

type chapterResult struct {
	content string
	failed  bool
}

func chaptersStage(rc retryConfig) *flow.Batch[*State] {
	return flow.MustBatch(flow.BatchSpec[*State]{
		Name:        "chapters",
		MaxAttempts: rc.attempts,
		Wait:        rc.wait,
		Prep: func(ctx context.Context, s *State) ([]any, error) {
			items := make([]any, 0, len(s.ChapterOrder))
			for n, idx := range s.ChapterOrder {
				ch := Chapter{Number: n + 1, AbstractionIndex: idx}
				title := s.Abstractions[idx].Name
				items = append(items, chapterItem{
					call:             s.newCall(s.chapterPrompt(ch)),
					number:           n + 1,
					abstractionIndex: idx,
					title:            title,
					filename:         chapterFilename(n+1, title),
				})
			}
			return items, nil
		},
		Exec: func(ctx context.Context, prep any) (any, error) {
			item := prep.(chapterItem)
			text, err := item.call.complete(ctx)
			if err != nil {
				return nil, err
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return nil, fmt.Errorf("chapter %d reply is empty", item.number)
			}
			// Models occasionally skip the requested heading; restore it so
			// every chapter file opens the same way.
			heading := fmt.Sprintf("# Chapter %d: %s", item.number, item.title)
			if !strings.HasPrefix(text, "#") {
				text = heading + "\n\n" + text
			}
			return chapterResult{content: text}, nil
		},
		// One failed chapter must not sink the other chapters: substitute a
		// placeholder and let combine mark it.
		Recover: func(prep any, execErr error) (any, error) {
			item := prep.(chapterItem)
			return chapterResult{
				content: fmt.Sprintf(
					"# Chapter %d: %s\n\n> Generation of this chapter failed: %v\n\nRe-run the generator to retry this chapter.\n",
					item.number, item.title, execErr),
				failed: true,
			}, nil
		},
		Post: func(ctx context.Context, s *State, items, results []any) (flow.Action, error) {
			chapters := make([]Chapter, 0, len(items))
			for i := range items {
				item := items[i].(chapterItem)
				res := results[i].(chapterResult)
				chapters = append(chapters, Chapter{
					Number:           item.number,
					AbstractionIndex: item.abstractionIndex,
					Title:            item.title,
					Filename:         item.filename,
					Content:          res.content,
					Failed:           res.failed,
				})
			}
			s.Chapters = chapters
			return flow.Default, nil
		},
	})
}
