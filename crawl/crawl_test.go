// ABOUTME: Tests for LocalSource filtering: glob include/exclude, size threshold, ordering.
// ABOUTME: Also covers the zip extraction path shared with GitHubSource.
package crawl

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree creates files under dir from a path->content map.
func writeTree(t *testing.T, dir string, tree map[string]string) {
	t.Helper()
	for path, content := range tree {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestLocalSourceIncludeExclude(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go":          "package main",
		"util/helper.go":   "package util",
		"util/helper_test.go": "package util",
		"docs/readme.md":   "# readme",
		"vendor/dep/dep.go": "package dep",
	})

	src := &LocalSource{Root: dir}
	files, err := src.Files(context.Background(), Options{
		Include: []string{"**/*.go"},
		Exclude: []string{"vendor/**", "**/*_test.go"},
	})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	got := strings.Join(paths(files), ",")
	want := "main.go,util/helper.go"
	if got != want {
		t.Errorf("paths = %q, want %q", got, want)
	}
}

func TestLocalSourceEmptyIncludeMeansEverything(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt": "a",
		"b.md":  "b",
	})

	files, err := (&LocalSource{Root: dir}).Files(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2", len(files))
	}
}

func TestLocalSourceSizeThresholdSkipsNotErrs(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"small.txt": "tiny",
		"large.txt": strings.Repeat("x", 2048),
	})

	files, err := (&LocalSource{Root: dir}).Files(context.Background(), Options{MaxFileSize: 1024})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 || files[0].Path != "small.txt" {
		t.Errorf("paths = %v, want [small.txt]", paths(files))
	}
}

func TestLocalSourceSkipsHiddenDirsAndBinary(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"visible.txt":   "ok",
		".git/config":   "hidden",
		"blob.bin":      "\x00\xff\xfe binary",
	})

	files, err := (&LocalSource{Root: dir}).Files(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 || files[0].Path != "visible.txt" {
		t.Errorf("paths = %v, want [visible.txt]", paths(files))
	}
}

func TestLocalSourceDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"c.txt": "c", "a.txt": "a", "b/d.txt": "d",
	})

	files, err := (&LocalSource{Root: dir}).Files(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	got := strings.Join(paths(files), ",")
	if got != "a.txt,b/d.txt,c.txt" {
		t.Errorf("order = %q, want sorted", got)
	}
}

func TestLocalSourceMissingRootIsFatal(t *testing.T) {
	src := &LocalSource{Root: filepath.Join(t.TempDir(), "nope")}
	if _, err := src.Files(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		raw       string
		owner     string
		repo      string
		ref       string
		wantError bool
	}{
		{raw: "https://github.com/octo/demo", owner: "octo", repo: "demo"},
		{raw: "https://github.com/octo/demo.git", owner: "octo", repo: "demo"},
		{raw: "https://github.com/octo/demo/tree/main", owner: "octo", repo: "demo", ref: "main"},
		{raw: "https://gitlab.com/octo/demo", wantError: true},
		{raw: "https://github.com/onlyowner", wantError: true},
	}
	for _, tt := range tests {
		src, err := ParseGitHubURL(tt.raw)
		if tt.wantError {
			if err == nil {
				t.Errorf("%s: expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.raw, err)
			continue
		}
		if src.Owner != tt.owner || src.Repo != tt.repo || src.Ref != tt.ref {
			t.Errorf("%s: parsed %+v", tt.raw, src)
		}
	}
}

func TestFilesFromZipStripsTopDir(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"demo-main/main.go":     "package main",
		"demo-main/sub/util.go": "package sub",
		"demo-main/skip.md":     "# skip",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	files, err := filesFromZip(buf.Bytes(), Options{Include: []string{"**/*.go"}})
	if err != nil {
		t.Fatalf("filesFromZip: %v", err)
	}
	got := strings.Join(paths(files), ",")
	if got != "main.go,sub/util.go" {
		t.Errorf("paths = %q, want %q", got, "main.go,sub/util.go")
	}
}
