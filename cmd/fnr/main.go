// Command fnr is a project-wide find-and-replace tool with optional
// similarity search. It runs one-shot searches and replacements from the
// command line and can serve the same engine over MCP stdio for editor
// integrations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/standardbeagle/fnr/internal/config"
	"github.com/standardbeagle/fnr/internal/editor"
	"github.com/standardbeagle/fnr/internal/history"
	"github.com/standardbeagle/fnr/internal/logging"
	fnrmcp "github.com/standardbeagle/fnr/internal/mcp"
	"github.com/standardbeagle/fnr/internal/query"
	"github.com/standardbeagle/fnr/internal/replace"
	"github.com/standardbeagle/fnr/internal/search"
	"github.com/standardbeagle/fnr/internal/searchtypes"
	"github.com/standardbeagle/fnr/internal/semantic"
	"github.com/standardbeagle/fnr/internal/version"
	"github.com/standardbeagle/fnr/pkg/pathutil"
)

func main() {
	app := &cli.App{
		Name:                   "fnr",
		Usage:                  "Find and replace across a project, with filter tokens and similarity search",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root directory (default: current directory)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			replaceCommand(),
			historyCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// searchFlags are shared by the search and replace commands.
func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "regex",
			Aliases: []string{"E"},
			Usage:   "treat the query as a regular expression",
		},
		&cli.BoolFlag{
			Name:    "case",
			Aliases: []string{"c"},
			Usage:   "match case exactly (default: case-insensitive)",
		},
		&cli.BoolFlag{
			Name:    "word",
			Aliases: []string{"w"},
			Usage:   "match whole words only",
		},
		&cli.BoolFlag{
			Name:    "semantic",
			Aliases: []string{"s"},
			Usage:   "also run similarity search alongside literal matching",
		},
		&cli.BoolFlag{
			Name:  "open-only",
			Usage: "restrict results to files open in the editor",
		},
		&cli.StringFlag{
			Name:    "include",
			Aliases: []string{"i"},
			Usage:   "include glob, e.g. \"src/**/*.go\"",
		},
		&cli.StringFlag{
			Name:    "exclude",
			Aliases: []string{"x"},
			Usage:   "exclude glob, e.g. \"**/*_test.go\"",
		},
		&cli.IntFlag{
			Name:    "max",
			Aliases: []string{"n"},
			Usage:   "maximum total matches",
		},
		&cli.BoolFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "emit machine-readable JSON",
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search file contents (supports @modified, @ext:, and @tag: filter tokens)",
		ArgsUsage: "<query>",
		Flags:     searchFlags(),
		Action:    searchAction,
	}
}

func replaceCommand() *cli.Command {
	flags := append(searchFlags(),
		&cli.BoolFlag{
			Name:    "preserve-case",
			Aliases: []string{"p"},
			Usage:   "adapt the replacement's casing to each match (FOO->BAR, Foo->Bar, foo->bar)",
		},
		&cli.BoolFlag{
			Name:  "preview",
			Usage: "show what would change without touching any file",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "limit the replacement to a single file",
		},
	)
	return &cli.Command{
		Name:      "replace",
		Usage:     "Replace matches across all matching files",
		ArgsUsage: "<query> <replacement>",
		Flags:     flags,
		Action:    replaceAction,
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List or clear recent queries and glob patterns",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "clear all recorded history",
			},
			&cli.BoolFlag{
				Name:  "globs",
				Usage: "list recent glob patterns instead of queries",
			},
		},
		Action: historyAction,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the search and replace tools over MCP stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "append JSON logs to this file instead of stderr",
			},
		},
		Action: serveAction,
	}
}

// loadConfig resolves the project root from the --root flag (falling back
// to the working directory) and loads .fnr.kdl if present.
func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	return config.Load(root)
}

func optionsFromFlags(c *cli.Context, cfg *config.Config) searchtypes.SearchOptions {
	opts := searchtypes.DefaultSearchOptions()
	opts.UseRegex = c.Bool("regex")
	opts.CaseSensitive = c.Bool("case")
	opts.WholeWord = c.Bool("word")
	opts.SemanticEnabled = c.Bool("semantic") || cfg.Search.SemanticEnabled
	opts.SearchOpenFilesOnly = c.Bool("open-only")
	opts.IncludeGlob = c.String("include")
	opts.ExcludeGlob = c.String("exclude")
	opts.MaxResults = cfg.Search.MaxResults
	if c.Int("max") > 0 {
		opts.MaxResults = c.Int("max")
	}
	return opts
}

// session bundles the engine, orchestrator, and history for a one-shot
// command invocation.
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	buffers *editor.Buffers
	hist    *history.Manager
	orch    *search.Orchestrator
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	log := logger(c)

	engine := search.NewEngine(cfg.Project.Root, log)
	engine.SetExcludes(cfg.Exclude)
	engine.SetMaxFileSize(cfg.Search.MaxFileSize)

	buffers := editor.NewBuffers(cfg.Project.Root, log)

	var store history.Store
	if st, err := history.OpenStore(cfg.Project.Root); err != nil {
		log.Warn("history store unavailable", zap.Error(err))
	} else {
		store = st
	}
	hist := history.NewManager(store, log)

	sem := semantic.NewSearcher(cfg.Project.Root, log)
	sem.SetThreshold(cfg.Search.SemanticThreshold)

	orch := search.NewOrchestrator(search.OrchestratorConfig{
		Root:     cfg.Project.Root,
		Content:  engine,
		Semantic: sem,
		Editor:   buffers,
		History:  hist,
		Debounce: time.Duration(cfg.Search.DebounceMs) * time.Millisecond,
		TopK:     cfg.Search.SemanticTopK,
		Log:      log,
	})

	return &session{cfg: cfg, log: log, buffers: buffers, hist: hist, orch: orch}, nil
}

func (s *session) close() {
	s.orch.Close()
	if err := s.hist.Close(); err != nil {
		s.log.Warn("history close failed", zap.Error(err))
	}
	_ = s.log.Sync()
}

// runQuery executes one synchronous search and returns the snapshot, with
// the orchestrator's published error surfaced as a real error.
func (s *session) runQuery(ctx context.Context, raw string, opts searchtypes.SearchOptions) (search.Snapshot, error) {
	s.orch.SetOptions(opts)
	s.orch.SetQuery(raw)
	if err := s.orch.Search(ctx); err != nil {
		return search.Snapshot{}, err
	}
	snap := s.orch.Snapshot()
	if snap.Err != "" {
		return search.Snapshot{}, fmt.Errorf("%s", snap.Err)
	}
	return snap, nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func searchAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: fnr search <query>")
	}
	raw := strings.Join(c.Args().Slice(), " ")

	sess, err := newSession(c)
	if err != nil {
		return err
	}
	defer sess.close()

	ctx, cancel := interruptContext()
	defer cancel()

	snap, err := sess.runQuery(ctx, raw, optionsFromFlags(c, sess.cfg))
	if err != nil {
		return err
	}

	results := pathutil.ToRelativeFileResults(snap.Results, sess.cfg.Project.Root)

	if c.Bool("json") {
		return printJSON(map[string]interface{}{
			"query":          snap.Query,
			"results":        results,
			"semantic":       relativeSemantic(snap.Semantic, sess.cfg.Project.Root),
			"total_matches":  snap.TotalMatches,
			"files_searched": snap.FilesSearched,
		})
	}

	for _, fr := range results {
		fmt.Println(fr.File)
		for _, m := range fr.Matches {
			fmt.Printf("  %d:%d\t%s\n", m.Line, m.Column, m.Text)
		}
	}
	if len(snap.Semantic) > 0 {
		fmt.Println("similar:")
		for _, sr := range snap.Semantic {
			fmt.Printf("  %.2f\t%s:%d\n", sr.Similarity, pathutil.ToRelative(sr.File, sess.cfg.Project.Root), sr.StartLine)
		}
	}
	fmt.Printf("%d matches in %d files (%d searched)\n", snap.TotalMatches, len(results), snap.FilesSearched)
	return nil
}

func replaceAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: fnr replace <query> <replacement>")
	}
	raw := c.Args().Get(0)
	replacement := c.Args().Get(1)

	sess, err := newSession(c)
	if err != nil {
		return err
	}
	defer sess.close()

	ctx, cancel := interruptContext()
	defer cancel()

	snap, err := sess.runQuery(ctx, raw, optionsFromFlags(c, sess.cfg))
	if err != nil {
		return err
	}

	results := snap.Results
	if target := c.String("file"); target != "" {
		results = limitToFile(results, target, sess.cfg.Project.Root)
		if len(results) == 0 {
			return fmt.Errorf("no matches in %s", target)
		}
	}

	pq := query.Parse(raw)
	preserveCase := c.Bool("preserve-case")

	if c.Bool("preview") {
		previews := replace.GeneratePreview(results, pq.Text, snap.Options, replacement, preserveCase)
		if c.Bool("json") {
			return printJSON(map[string]interface{}{
				"previews":      previews,
				"matched_files": len(results),
				"truncated":     len(results) > searchtypes.PreviewMaxFiles,
			})
		}
		for _, p := range previews {
			fmt.Println(pathutil.ToRelative(p.File, sess.cfg.Project.Root))
			for _, ch := range p.Changes {
				fmt.Printf("  -%d\t%s\n", ch.Line, ch.Original)
				fmt.Printf("  +%d\t%s\n", ch.Line, ch.Replacement)
			}
		}
		if len(results) > searchtypes.PreviewMaxFiles {
			fmt.Printf("(preview truncated to %d files; replace applies to all %d)\n",
				searchtypes.PreviewMaxFiles, len(results))
		}
		return nil
	}

	executor := replace.NewExecutor(
		sess.cfg.Project.Root,
		pq.Text,
		replacement,
		snap.Options,
		preserveCase,
		sess.buffers,
		sess.log,
	)
	summary := executor.ReplaceInAllFiles(results, nil)

	if c.Bool("json") {
		return printJSON(summary)
	}
	fmt.Printf("replaced in %d files, %d failed\n", summary.Replaced, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d files could not be updated", summary.Failed)
	}
	return nil
}

func historyAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := logger(c)
	defer func() { _ = log.Sync() }()

	store, err := history.OpenStore(cfg.Project.Root)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	hist := history.NewManager(store, log)
	defer hist.Close()

	if c.Bool("clear") {
		if err := hist.Clear(); err != nil {
			return err
		}
		fmt.Println("history cleared")
		return nil
	}

	items := hist.Queries()
	if c.Bool("globs") {
		items = hist.Globs()
	}
	for _, item := range items {
		fmt.Println(item)
	}
	return nil
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	verbose := c.Bool("verbose")
	log := logging.New(verbose)
	if path := c.String("log-file"); path != "" {
		log = logging.NewFileLogger(path, verbose)
	}
	defer func() { _ = log.Sync() }()

	srv, err := fnrmcp.NewServer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		<-errChan
		return nil
	}
}

func logger(c *cli.Context) *zap.Logger {
	return logging.New(c.Bool("verbose"))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// limitToFile keeps only the results belonging to target, compared by
// canonical absolute path.
func limitToFile(results []searchtypes.FileResult, target, root string) []searchtypes.FileResult {
	want := pathutil.Normalize(target, root)
	for _, fr := range results {
		if pathutil.Normalize(fr.File, root) == want {
			return []searchtypes.FileResult{fr}
		}
	}
	return nil
}

func relativeSemantic(hits []searchtypes.SemanticResult, root string) []searchtypes.SemanticResult {
	if len(hits) == 0 {
		return hits
	}
	out := make([]searchtypes.SemanticResult, len(hits))
	copy(out, hits)
	for i := range out {
		out[i].File = pathutil.ToRelative(out[i].File, root)
	}
	return out
}
