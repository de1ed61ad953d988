// ABOUTME: GitHubSource downloads a repository snapshot as a codeload zip archive.
// ABOUTME: Applies the same glob and size filtering as LocalSource without a local checkout.
package crawl

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"unicode/utf8"
)

// GitHubSource fetches a repository archive from GitHub. Ref may be a branch,
// tag, or commit; empty means the default branch. A GITHUB_TOKEN environment
// variable, when present, is sent for private repositories and rate limits.
type GitHubSource struct {
	Owner string
	Repo  string
	Ref   string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// ParseGitHubURL extracts owner/repo/ref from a github.com repository URL.
func ParseGitHubURL(raw string) (*GitHubSource, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse repo URL: %w", err)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return nil, fmt.Errorf("unsupported repository host %q", u.Host)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("repository URL %q has no owner/name", raw)
	}
	src := &GitHubSource{Owner: parts[0], Repo: strings.TrimSuffix(parts[1], ".git")}
	// https://github.com/owner/repo/tree/<ref>
	if len(parts) >= 4 && parts[2] == "tree" {
		src.Ref = strings.Join(parts[3:], "/")
	}
	return src, nil
}

// Files downloads the archive and returns the filtered files.
func (s *GitHubSource) Files(ctx context.Context, opts Options) ([]File, error) {
	ref := s.Ref
	if ref == "" {
		ref = "HEAD"
	}
	archiveURL := fmt.Sprintf("https://codeload.github.com/%s/%s/zip/%s", s.Owner, s.Repo, ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, err
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", s.Owner, s.Repo, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s/%s: unexpected status %s", s.Owner, s.Repo, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return filesFromZip(data, opts)
}

// filesFromZip extracts the archive, stripping the top-level directory GitHub
// prepends, and applies the standard filtering.
func filesFromZip(data []byte, opts Options) ([]File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		// "repo-ref/path/to/file" -> "path/to/file"
		_, rel, ok := strings.Cut(zf.Name, "/")
		if !ok || rel == "" {
			continue
		}
		if !Selected(rel, opts.Include, opts.Exclude) {
			continue
		}
		if zf.UncompressedSize64 > uint64(maxSize) {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			continue
		}
		content, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr != nil || !utf8.Valid(content) {
			continue
		}
		files = append(files, File{Path: rel, Content: string(content)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
