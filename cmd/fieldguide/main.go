// ABOUTME: CLI entrypoint for the tutorial generator with generate, serve, and version modes.
// ABOUTME: Wires together crawling, the LLM client, caching, the pipeline, and signal handling.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fieldguide-ai/fieldguide/cache"
	"github.com/fieldguide-ai/fieldguide/crawl"
	"github.com/fieldguide-ai/fieldguide/flow"
	"github.com/fieldguide-ai/fieldguide/llm"
	"github.com/fieldguide-ai/fieldguide/output"
	"github.com/fieldguide-ai/fieldguide/preview"
	"github.com/fieldguide-ai/fieldguide/tutorial"
)

var version = "dev"

// multiFlag collects repeated string flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

// config holds all CLI configuration parsed from flags and positional arguments.
type config struct {
	repo            string // positional: local directory or GitHub URL
	name            string
	outputDir       string
	include         multiFlag
	exclude         multiFlag
	maxFileSize     int64
	maxAbstractions int
	provider        string
	model           string
	language        string
	noCache         bool
	cacheFile       string
	cacheDB         string
	logDir          string
	serveMode       bool
	serveDir        string
	port            int
	verbose         bool
	showVersion     bool
}

func main() {
	loadDotEnv(".env")

	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("fieldguide %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseFlags parses command-line flags and returns a populated config.
func parseFlags() config {
	var cfg config

	fs := flag.NewFlagSet("fieldguide", flag.ContinueOnError)
	fs.StringVar(&cfg.name, "name", "", "Project name (default: derived from the repo)")
	fs.StringVar(&cfg.outputDir, "output", "tutorial", "Output directory for the generated tutorial")
	fs.Var(&cfg.include, "include", "Glob pattern for files to include (repeatable; default: everything)")
	fs.Var(&cfg.exclude, "exclude", "Glob pattern for files to exclude (repeatable)")
	fs.Int64Var(&cfg.maxFileSize, "max-size", crawl.DefaultMaxFileSize, "Skip files larger than this many bytes")
	fs.IntVar(&cfg.maxAbstractions, "max-abstractions", tutorial.DefaultMaxAbstractions, "Maximum number of abstractions to identify")
	fs.StringVar(&cfg.provider, "provider", "", "LLM provider (default: first detected from environment)")
	fs.StringVar(&cfg.model, "model", "", "Model override for the selected provider")
	fs.StringVar(&cfg.language, "language", "", "Write the tutorial in this language (default: English)")
	fs.BoolVar(&cfg.noCache, "no-cache", false, "Bypass LLM cache lookups (responses are still stored)")
	fs.StringVar(&cfg.cacheFile, "cache-file", "llm_cache.json", "Path of the JSON LLM cache")
	fs.StringVar(&cfg.cacheDB, "cache-db", "", "Use a SQLite LLM cache at this path instead of the JSON file")
	fs.StringVar(&cfg.logDir, "log-dir", "logs", "Directory for LLM transcript logs")
	fs.BoolVar(&cfg.serveMode, "serve", false, "Serve a generated tutorial over HTTP instead of generating")
	fs.StringVar(&cfg.serveDir, "serve-dir", "", "Tutorial directory to serve (default: the -output directory)")
	fs.IntVar(&cfg.port, "port", 8000, "Preview server port")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(os.Stderr, version)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if fs.NArg() > 0 {
		cfg.repo = fs.Arg(0)
	}

	return cfg
}

// run dispatches to the appropriate mode based on the config.
// Returns an exit code: 0 for success, 1 for failure.
func run(cfg config) int {
	if cfg.serveMode {
		return runServe(cfg)
	}

	if cfg.repo == "" {
		printHelp(os.Stderr, version)
		return 0
	}

	return runGenerate(cfg)
}

// resolveSource turns the positional argument into a crawl source and a
// default project name. GitHub URLs crawl remotely; anything else is treated
// as a local directory.
func resolveSource(arg string) (crawl.Source, string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		src, err := crawl.ParseGitHubURL(arg)
		if err != nil {
			return nil, "", err
		}
		return src, src.Repo, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, "", err
	}
	return &crawl.LocalSource{Root: abs}, filepath.Base(abs), nil
}

// openCache builds the LLM cache from the configured backing store.
func openCache(cfg config) (*cache.Cache, error) {
	if cfg.cacheDB != "" {
		store, err := cache.OpenSQLiteStore(cfg.cacheDB)
		if err != nil {
			return nil, fmt.Errorf("open cache db: %w", err)
		}
		return cache.Open(store, cache.WithWarnings(os.Stderr)), nil
	}
	return cache.Open(cache.NewFileStore(cfg.cacheFile), cache.WithWarnings(os.Stderr)), nil
}

// runGenerate crawls the repo and runs the tutorial pipeline against it.
func runGenerate(cfg config) int {
	source, derivedName, err := resolveSource(cfg.repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	name := cfg.name
	if name == "" {
		name = derivedName
	}

	llmCache, err := openCache(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// Transcript sits outside the cache so cached replies are logged too.
	client, err := llm.FromEnv(llm.WithMiddleware(
		llm.Transcript(cfg.logDir),
		cache.Middleware(llmCache),
	))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Set one of: OPENROUTER_API_KEY, GROQ_API_KEY, TOGETHERAI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY")
		return 1
	}

	state := &tutorial.State{
		ProjectName: name,
		Source:      source,
		CrawlOptions: crawl.Options{
			Include:     cfg.include,
			Exclude:     cfg.exclude,
			MaxFileSize: cfg.maxFileSize,
		},
		Client:          client,
		Provider:        cfg.provider,
		Model:           cfg.model,
		UseCache:        !cfg.noCache,
		Language:        cfg.language,
		MaxAbstractions: cfg.maxAbstractions,
		Writer:          &output.DirWriter{Dir: cfg.outputDir},
	}

	// Set up context with signal handling for graceful cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	var events func(flow.Event)
	if cfg.verbose {
		events = verboseEventHandler
	}

	if err := tutorial.Generate(ctx, state, events); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Printf("Tutorial written to %s (%d files).\n", cfg.outputDir, len(state.WrittenFiles))
	failed := 0
	for _, ch := range state.Chapters {
		if ch.Failed {
			failed++
			fmt.Fprintf(os.Stderr, "warning: chapter %d (%s) fell back to a placeholder\n", ch.Number, ch.Title)
		}
	}
	if failed > 0 {
		fmt.Printf("%d chapter(s) need a re-run; they are marked in index.md.\n", failed)
	}
	return 0
}

// runServe starts the HTTP preview server over a generated tutorial.
func runServe(cfg config) int {
	dir := cfg.serveDir
	if dir == "" {
		dir = cfg.outputDir
	}
	if _, err := os.Stat(filepath.Join(dir, "index.md")); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s does not look like a generated tutorial (no index.md)\n", dir)
		return 1
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.port)

	// Set up context with signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: preview.NewServer(dir).Handler(),
	}

	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	fmt.Fprintf(os.Stderr, "serving %s on http://%s\n", dir, addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

// verboseEventHandler prints pipeline lifecycle events to stderr.
func verboseEventHandler(evt flow.Event) {
	switch evt.Type {
	case flow.EventFlowStarted:
		fmt.Fprintf(os.Stderr, "[pipeline] started (run %s)\n", evt.RunID)
	case flow.EventStepStarted:
		fmt.Fprintf(os.Stderr, "[stage] %s started\n", evt.Step)
	case flow.EventStepCompleted:
		fmt.Fprintf(os.Stderr, "[stage] %s completed\n", evt.Step)
	case flow.EventStepRetrying:
		fmt.Fprintf(os.Stderr, "[stage] %s retrying (attempt %d): %s\n", evt.Step, evt.Attempt, evt.Err)
	case flow.EventStepRecovered:
		fmt.Fprintf(os.Stderr, "[stage] %s recovered after: %s\n", evt.Step, evt.Err)
	case flow.EventStepFailed:
		fmt.Fprintf(os.Stderr, "[stage] %s failed: %s\n", evt.Step, evt.Err)
	case flow.EventFlowCompleted:
		fmt.Fprintf(os.Stderr, "[pipeline] completed\n")
	case flow.EventFlowFailed:
		fmt.Fprintf(os.Stderr, "[pipeline] failed: %s\n", evt.Err)
	}
}
