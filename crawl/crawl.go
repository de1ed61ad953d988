// ABOUTME: Source collaborators that gather candidate files for the tutorial pipeline.
// ABOUTME: Defines the Source interface, glob-based filtering, and the LocalSource directory walker.
package crawl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// File is one gathered source file. Path is relative to the crawl root and
// always slash-separated so downstream prompts are platform-independent.
type File struct {
	Path    string
	Content string
}

// Options filter the crawl. Include and Exclude are doublestar glob patterns
// matched against the relative path; an empty Include set means everything.
// Files larger than MaxFileSize bytes are skipped, not errors.
type Options struct {
	Include     []string
	Exclude     []string
	MaxFileSize int64
}

// DefaultMaxFileSize bounds file content handed to the LLM.
const DefaultMaxFileSize = 100 * 1024

// Source yields the files of a codebase. An unreachable source is an error;
// individual files excluded by pattern or size are silently skipped.
type Source interface {
	// Files returns the filtered files in deterministic (path-sorted) order.
	Files(ctx context.Context, opts Options) ([]File, error)
}

// LocalSource crawls a directory on the local filesystem.
type LocalSource struct {
	Root string
}

// Files walks the root, applying the include/exclude patterns and size
// threshold. Hidden directories (dot-prefixed) are not descended into.
func (s *LocalSource) Files(ctx context.Context, opts Options) ([]File, error) {
	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", s.Root)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []File
	err = filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(s.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !Selected(rel, opts.Include, opts.Exclude) {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			return nil // vanished mid-walk; skip
		}
		if fi.Size() > maxSize {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		if !utf8.Valid(content) {
			return nil // binary
		}

		files = append(files, File{Path: rel, Content: string(content)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", s.Root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Selected reports whether a relative path passes the include and exclude
// pattern sets. Exclusion wins over inclusion.
func Selected(rel string, include, exclude []string) bool {
	for _, pat := range exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pat := range include {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
