// ABOUTME: Parsing and validation of structured LLM replies.
// ABOUTME: Extracts fenced YAML blocks and resolves "idx # comment" index references.
package tutorial

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlBlock returns the contents of the first ```yaml fenced block in reply.
// Models reliably follow the fenced-output instruction, so a missing fence is
// a malformed reply, not something to fish substrings out of.
func yamlBlock(reply string) (string, error) {
	_, rest, ok := strings.Cut(reply, "```yaml")
	if !ok {
		return "", fmt.Errorf("reply has no ```yaml block")
	}
	block, _, ok := strings.Cut(rest, "```")
	if !ok {
		return "", fmt.Errorf("reply has an unterminated ```yaml block")
	}
	return strings.TrimSpace(block), nil
}

// decodeYAML extracts the fenced block and unmarshals it into out.
func decodeYAML(reply string, out any) error {
	block, err := yamlBlock(reply)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal([]byte(block), out); err != nil {
		return fmt.Errorf("parse reply YAML: %w", err)
	}
	return nil
}

// parseIndex resolves an index reference from a reply. Models are prompted to
// answer with bare integers but often echo the label back ("2 # ParserCore"),
// so both forms are accepted. The index must fall in [0, count).
func parseIndex(v any, count int) (int, error) {
	var idx int
	switch t := v.(type) {
	case int:
		idx = t
	case string:
		head, _, _ := strings.Cut(t, "#")
		n, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil {
			return 0, fmt.Errorf("index %q is not a number", t)
		}
		idx = n
	default:
		return 0, fmt.Errorf("index has unexpected type %T", v)
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("index %d out of range [0, %d)", idx, count)
	}
	return idx, nil
}

// parseIndexList resolves a list of index references.
func parseIndexList(vs []any, count int) ([]int, error) {
	out := make([]int, 0, len(vs))
	for _, v := range vs {
		idx, err := parseIndex(v, count)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

// validatePermutation checks that order contains every index in [0, count)
// exactly once.
func validatePermutation(order []int, count int) error {
	if len(order) != count {
		return fmt.Errorf("order has %d entries, want %d", len(order), count)
	}
	seen := make([]bool, count)
	for _, idx := range order {
		if idx < 0 || idx >= count {
			return fmt.Errorf("order entry %d out of range [0, %d)", idx, count)
		}
		if seen[idx] {
			return fmt.Errorf("order repeats entry %d", idx)
		}
		seen[idx] = true
	}
	return nil
}

// chapterFilename derives "NN_name.md" from a chapter's position and title.
func chapterFilename(number int, title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '/':
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "chapter"
	}
	return fmt.Sprintf("%02d_%s.md", number, name)
}
