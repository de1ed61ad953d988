// ABOUTME: Prompt builders for the LLM-backed pipeline stages.
// ABOUTME: Each prompt pins the reply to a fenced YAML block so parsing stays mechanical.
package tutorial

import (
	"fmt"
	"strings"
)

// languageNote returns an instruction to write prose in the configured
// language, or nothing for the English default.
func (s *State) languageNote() string {
	if s.Language == "" || strings.EqualFold(s.Language, "english") {
		return ""
	}
	return fmt.Sprintf("\nWrite every name, description, and explanation in %s. Keep code and identifiers as-is.\n", s.Language)
}

// filesListing renders the indexed file contents fed to the identify stage.
func (s *State) filesListing(indexes []int) string {
	var b strings.Builder
	for _, i := range indexes {
		fmt.Fprintf(&b, "--- File %s ---\n%s\n\n", s.fileLabel(i), s.Files[i].Content)
	}
	return b.String()
}

func allIndexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// abstractionListing renders "index # name" lines for prompts that reference
// previously identified abstractions.
func (s *State) abstractionListing() string {
	var b strings.Builder
	for i, a := range s.Abstractions {
		fmt.Fprintf(&b, "%d # %s\n", i, a.Name)
	}
	return b.String()
}

func (s *State) identifyPrompt() string {
	return fmt.Sprintf(`For the project %q, analyze the codebase below and identify the %d most important core abstractions a newcomer must understand.
%s
For each abstraction give:
- name: a concise name
- description: what it is and why it matters, in about 100 words, with a simple analogy
- file_indexes: the indexes of the files most relevant to it

Files are labeled "index # path":

%s

Reply with a fenced YAML block shaped like:

`+"```yaml"+`
- name: Query Processor
  description: |
    Explains what this does...
  file_indexes:
    - 0
    - 3
`+"```", s.ProjectName, s.MaxAbstractions, s.languageNote(), s.filesListing(allIndexes(len(s.Files))))
}

func (s *State) relationshipsPrompt() string {
	return fmt.Sprintf(`For the project %q, here are its core abstractions, labeled "index # name":

%s
And the relevant file contents:

%s
Write a beginner-friendly summary of the whole project (a few sentences, markdown **bold** for key concepts allowed), then list how the abstractions interact. Every abstraction must appear in at least one relationship, each relationship labeled with a short verb phrase like "calls" or "stores results in".
%s
Reply with a fenced YAML block shaped like:

`+"```yaml"+`
summary: |
  The project does...
relationships:
  - from: 0
    to: 1
    label: "calls"
`+"```", s.ProjectName, s.abstractionListing(), s.filesListing(s.relevantFileIndexes()), s.languageNote())
}

// relevantFileIndexes collects the union of all abstraction file references,
// in file order, so the relationships prompt only carries cited content.
func (s *State) relevantFileIndexes() []int {
	used := make(map[int]bool)
	for _, a := range s.Abstractions {
		for _, i := range a.FileIndexes {
			used[i] = true
		}
	}
	var out []int
	for i := range s.Files {
		if used[i] {
			out = append(out, i)
		}
	}
	return out
}

func (s *State) orderPrompt() string {
	var rels strings.Builder
	for _, r := range s.Relationships {
		fmt.Fprintf(&rels, "- %s -> %s: %s\n", s.Abstractions[r.From].Name, s.Abstractions[r.To].Name, r.Label)
	}
	return fmt.Sprintf(`For the project %q, decide the best order to teach these abstractions, labeled "index # name":

%s
Their relationships:

%s
Start from the most user-facing or foundational concept and work toward the details. Output the indexes in teaching order, covering every abstraction exactly once.
%s
Reply with a fenced YAML block shaped like:

`+"```yaml"+`
- 2 # FoundationName
- 0
- 1
`+"```", s.ProjectName, s.abstractionListing(), rels.String(), s.languageNote())
}

// chapterPrompt is built per chapter by the write stage; ch.Number and the
// full order give the model its position in the tutorial.
func (s *State) chapterPrompt(ch Chapter) string {
	a := s.Abstractions[ch.AbstractionIndex]

	var outline strings.Builder
	for n, idx := range s.ChapterOrder {
		fmt.Fprintf(&outline, "%d. %s\n", n+1, s.Abstractions[idx].Name)
	}

	return fmt.Sprintf(`Write chapter %d of a beginner tutorial for the project %q, about the abstraction %q.

Concept description:
%s

Full tutorial outline:
%s
Relevant code:

%s
Start with "# Chapter %d: %s". Motivate the concept with a concrete use case, walk through minimal example code (keep snippets under 10 lines, explain each), describe the internal flow step by step, and end with a one-paragraph summary that hands off to the next chapter. Use analogies and keep the tone welcoming.
%s
Reply with the chapter markdown only, no fences around the whole reply.`,
		ch.Number, s.ProjectName, a.Name, a.Description, outline.String(),
		s.filesListing(a.FileIndexes), ch.Number, a.Name, s.languageNote())
}
