// ABOUTME: Help display for the fieldguide CLI with grouped flags, examples, and environment status.
package main

import (
	"fmt"
	"io"
	"os"
)

// printHelp writes a formatted help message to w, including usage patterns,
// grouped flags, examples, and API key detection status.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "fieldguide %s — codebase-to-tutorial generator\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  fieldguide <dir>                         Generate a tutorial from a local repo")
	fmt.Fprintln(w, "  fieldguide <github-url>                  Generate from a GitHub repository")
	fmt.Fprintln(w, "  fieldguide -serve [-port 8000]           Serve a generated tutorial")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Generation Flags:")
	fmt.Fprintln(w, "  -name <name>            Project name (default: derived from the repo)")
	fmt.Fprintln(w, "  -output <dir>           Output directory (default: tutorial)")
	fmt.Fprintln(w, "  -include <glob>         Include pattern, repeatable (default: everything)")
	fmt.Fprintln(w, "  -exclude <glob>         Exclude pattern, repeatable")
	fmt.Fprintln(w, "  -max-size <bytes>       Skip files larger than this (default: 102400)")
	fmt.Fprintln(w, "  -max-abstractions <n>   Cap on identified abstractions (default: 10)")
	fmt.Fprintln(w, "  -language <lang>        Tutorial language (default: English)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LLM Flags:")
	fmt.Fprintln(w, "  -provider <name>        openrouter, groq, togetherai, openai, or anthropic")
	fmt.Fprintln(w, "  -model <model>          Model override for the selected provider")
	fmt.Fprintln(w, "  -no-cache               Bypass cache lookups (responses are still stored)")
	fmt.Fprintln(w, "  -cache-file <path>      JSON cache location (default: llm_cache.json)")
	fmt.Fprintln(w, "  -cache-db <path>        Use a SQLite cache instead of the JSON file")
	fmt.Fprintln(w, "  -log-dir <dir>          LLM transcript log directory (default: logs)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server Flags:")
	fmt.Fprintln(w, "  -serve                  Serve a generated tutorial over HTTP")
	fmt.Fprintln(w, "  -serve-dir <dir>        Tutorial to serve (default: the -output directory)")
	fmt.Fprintln(w, "  -port <port>            Server port (default: 8000)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -verbose                Verbose output")
	fmt.Fprintln(w, "  -version                Print version and exit")
	fmt.Fprintln(w, "  -help                   Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  fieldguide . -include '**/*.go' -exclude 'vendor/**'")
	fmt.Fprintln(w, "  fieldguide https://github.com/octo/demo -language spanish")
	fmt.Fprintln(w, "  fieldguide -serve -port 3000")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  OPENROUTER_API_KEY      %s\n", envStatus("OPENROUTER_API_KEY"))
	fmt.Fprintf(w, "  GROQ_API_KEY            %s\n", envStatus("GROQ_API_KEY"))
	fmt.Fprintf(w, "  TOGETHERAI_API_KEY      %s\n", envStatus("TOGETHERAI_API_KEY"))
	fmt.Fprintf(w, "  OPENAI_API_KEY          %s\n", envStatus("OPENAI_API_KEY"))
	fmt.Fprintf(w, "  ANTHROPIC_API_KEY       %s\n", envStatus("ANTHROPIC_API_KEY"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  At least one API key is required for generation.")
	fmt.Fprintln(w, "  DEFAULT_LLM_PROVIDER selects among detected providers.")
	fmt.Fprintln(w, "  GITHUB_TOKEN is used for private GitHub repositories.")
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
