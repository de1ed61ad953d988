// ABOUTME: Transcript middleware that appends every prompt and response to a per-day log file.
// ABOUTME: Logging failures are downgraded to stderr warnings; they never fail the call.
package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Transcript returns middleware that records each request's provider, prompt,
// and response (or error) to a log file under dir named llm_calls_YYYYMMDD.log.
// The directory is created on first use.
func Transcript(dir string) Middleware {
	return func(ctx context.Context, req Request, next NextFunc) (*Response, error) {
		appendTranscript(dir, fmt.Sprintf("PROVIDER:%s PROMPT: %s", providerLabel(req), req.Prompt))

		resp, err := next(ctx, req)
		switch {
		case err != nil:
			appendTranscript(dir, fmt.Sprintf("PROVIDER:%s ERROR: %v", providerLabel(req), err))
		case resp.Cached:
			appendTranscript(dir, fmt.Sprintf("PROVIDER:%s RESPONSE (cached): %s", providerLabel(req), resp.Text))
		default:
			appendTranscript(dir, fmt.Sprintf("PROVIDER:%s RESPONSE (API): %s", providerLabel(req), resp.Text))
		}
		return resp, err
	}
}

func providerLabel(req Request) string {
	if req.Provider != "" {
		return req.Provider
	}
	return "default"
}

func appendTranscript(dir, line string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: transcript dir: %v\n", err)
		return
	}
	name := filepath.Join(dir, fmt.Sprintf("llm_calls_%s.log", time.Now().Format("20060102")))
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: transcript open: %v\n", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s - %s\n", time.Now().Format(time.RFC3339), line)
}
