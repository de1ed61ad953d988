// ABOUTME: Tests for reply parsing: fenced YAML extraction, index references, permutations.
package tutorial

import (
	"strings"
	"testing"
)

func TestYamlBlockExtraction(t *testing.T) {
	reply := "Here you go:\n```yaml\n- name: A\n```\ntrailing prose"
	block, err := yamlBlock(reply)
	if err != nil {
		t.Fatalf("yamlBlock: %v", err)
	}
	if block != "- name: A" {
		t.Errorf("block = %q", block)
	}
}

func TestYamlBlockMissingFence(t *testing.T) {
	if _, err := yamlBlock("no fence here"); err == nil {
		t.Error("expected error for missing fence")
	}
	if _, err := yamlBlock("```yaml\nnever closed"); err == nil {
		t.Error("expected error for unterminated fence")
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		count   int
		want    int
		wantErr bool
	}{
		{name: "bare int", in: 2, count: 5, want: 2},
		{name: "labeled string", in: "2 # ParserCore", count: 5, want: 2},
		{name: "plain string", in: " 4 ", count: 5, want: 4},
		{name: "negative", in: -1, count: 5, wantErr: true},
		{name: "past end", in: 5, count: 5, wantErr: true},
		{name: "not a number", in: "ParserCore", count: 5, wantErr: true},
		{name: "wrong type", in: 1.5, count: 5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIndex(tt.in, tt.count)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseIndex(%v) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseIndex(%v): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseIndex(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidatePermutation(t *testing.T) {
	tests := []struct {
		name    string
		order   []int
		count   int
		wantErr bool
	}{
		{name: "valid reordering", order: []int{2, 0, 1}, count: 3},
		{name: "identity", order: []int{0, 1, 2}, count: 3},
		{name: "duplicate", order: []int{2, 0, 0}, count: 3, wantErr: true},
		{name: "out of range", order: []int{2, 0, 3}, count: 3, wantErr: true},
		{name: "too short", order: []int{0, 1}, count: 3, wantErr: true},
		{name: "too long", order: []int{0, 1, 2, 1}, count: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePermutation(tt.order, tt.count)
			if tt.wantErr && err == nil {
				t.Errorf("validatePermutation(%v, %d) succeeded, want error", tt.order, tt.count)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validatePermutation(%v, %d): %v", tt.order, tt.count, err)
			}
		})
	}
}

func TestChapterFilename(t *testing.T) {
	tests := []struct {
		number int
		title  string
		want   string
	}{
		{1, "Query Processor", "01_query_processor.md"},
		{12, "HTTP/2 Support", "12_http_2_support.md"},
		{3, "état", "03_tat.md"},
		{4, "!!!", "04_chapter.md"},
	}
	for _, tt := range tests {
		if got := chapterFilename(tt.number, tt.title); got != tt.want {
			t.Errorf("chapterFilename(%d, %q) = %q, want %q", tt.number, tt.title, got, tt.want)
		}
	}
}

func TestDecodeYAMLRejectsBadYAML(t *testing.T) {
	var out []any
	err := decodeYAML("```yaml\n- foo: [unclosed\n```", &out)
	if err == nil || !strings.Contains(err.Error(), "parse reply YAML") {
		t.Errorf("err = %v, want YAML parse failure", err)
	}
}
