// ABOUTME: Local preview server for a generated tutorial directory.
// ABOUTME: Renders the markdown chapters to HTML with a simple navigation shell.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Server renders the markdown files of one tutorial directory.
type Server struct {
	dir  string
	md   goldmark.Markdown
	tmpl *template.Template
}

// NewServer creates a preview server for the tutorial in dir.
func NewServer(dir string) *Server {
	return &Server{
		dir: dir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		tmpl: template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// Handler returns the HTTP handler serving the tutorial.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handlePage)
	r.Get("/{page}", s.handlePage)
	return r
}

type pageData struct {
	Title string
	Body  template.HTML
	Pages []string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	if page == "" {
		page = "index.md"
	}
	// Only serve markdown files that live directly in the tutorial directory.
	if !strings.HasSuffix(page, ".md") || strings.ContainsAny(page, "/\\") || strings.Contains(page, "..") {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.dir, page))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var body bytes.Buffer
	if err := s.md.Convert(data, &body); err != nil {
		http.Error(w, fmt.Sprintf("render %s: %v", page, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.tmpl.Execute(w, pageData{
		Title: strings.TrimSuffix(page, ".md"),
		Body:  template.HTML(body.String()),
		Pages: s.pages(),
	})
}

// pages lists the directory's markdown files for the navigation sidebar,
// index first, chapters in filename order.
func (s *Server) pages() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "index.md" {
			return true
		}
		if names[j] == "index.md" {
			return false
		}
		return names[i] < names[j]
	})
	return names
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { display: flex; margin: 0; font-family: system-ui, sans-serif; line-height: 1.6; }
  nav { min-width: 220px; padding: 1.5rem; background: #f6f8fa; height: 100vh; box-sizing: border-box; overflow-y: auto; }
  nav a { display: block; color: #0969da; text-decoration: none; padding: 0.15rem 0; }
  main { max-width: 46rem; padding: 1.5rem 2.5rem; }
  pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; border-radius: 6px; }
  code { font-family: ui-monospace, monospace; font-size: 0.92em; }
</style>
</head>
<body>
<nav>
{{range .Pages}}<a href="/{{.}}">{{.}}</a>
{{end}}</nav>
<main>
{{.Body}}
</main>
</body>
</html>
`
