// ABOUTME: Output collaborator that persists generated documents.
// ABOUTME: DirWriter writes (filename, content) pairs into a destination directory, creating it if absent.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// Document is one generated file.
type Document struct {
	Filename string
	Content  string
}

// Writer persists a set of documents. A destination that cannot be written
// is a fatal collaborator failure; the caller does not retry it.
type Writer interface {
	Write(docs []Document) error
}

// DirWriter writes documents into Dir, creating the directory if needed.
type DirWriter struct {
	Dir string
}

// Write persists each document in order. The first failure aborts; partially
// written output is left in place for inspection.
func (w *DirWriter) Write(docs []Document) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, doc := range docs {
		path := filepath.Join(w.Dir, doc.Filename)
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", doc.Filename, err)
		}
	}
	return nil
}
