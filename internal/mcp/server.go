// Package mcp exposes the fnr engine over the Model Context Protocol. The
// server speaks stdio and offers four tools: search, preview_replace,
// replace, and history. Responses are JSON text content.
package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/standardbeagle/fnr/internal/config"
	"github.com/standardbeagle/fnr/internal/editor"
	"github.com/standardbeagle/fnr/internal/history"
	"github.com/standardbeagle/fnr/internal/search"
	"github.com/standardbeagle/fnr/internal/semantic"
	"github.com/standardbeagle/fnr/internal/version"
)

// Server wires the engine, orchestrator, editor state, and history behind
// the MCP tool surface.
type Server struct {
	cfg     *config.Config
	engine  *search.Engine
	orch    *search.Orchestrator
	buffers *editor.Buffers
	history *history.Manager
	watcher *editor.Watcher
	log     *zap.Logger
	server  *mcp.Server
}

// NewServer builds a server for the workspace described by cfg. log may be
// nil.
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	root := cfg.Project.Root

	engine := search.NewEngine(root, log)
	engine.SetExcludes(cfg.Exclude)
	engine.SetMaxFileSize(cfg.Search.MaxFileSize)

	buffers := editor.NewBuffers(root, log)

	var store history.Store
	if s, err := history.OpenStore(root); err != nil {
		// History is a convenience; run without persistence.
		log.Warn("history store unavailable", zap.Error(err))
	} else {
		store = s
	}
	hist := history.NewManager(store, log)

	sem := semantic.NewSearcher(root, log)
	sem.SetThreshold(cfg.Search.SemanticThreshold)

	orch := search.NewOrchestrator(search.OrchestratorConfig{
		Root:     root,
		Content:  engine,
		Semantic: sem,
		Editor:   buffers,
		History:  hist,
		Debounce: time.Duration(cfg.Search.DebounceMs) * time.Millisecond,
		TopK:     cfg.Search.SemanticTopK,
		Log:      log,
	})

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		orch:    orch,
		buffers: buffers,
		history: hist,
		log:     log,
	}

	if cfg.Watch.Enabled {
		watcher, err := editor.NewWatcher(engine, buffers, log)
		if err != nil {
			log.Warn("file watcher unavailable", zap.Error(err))
		} else {
			watcher.SetDebounce(time.Duration(cfg.Watch.DebounceMs) * time.Millisecond)
			watcher.SetOnBatch(func([]string) { orch.Refresh() })
			if err := watcher.Start(root); err != nil {
				log.Warn("file watcher failed to start", zap.Error(err))
				watcher.Stop()
			} else {
				s.watcher = watcher
			}
		}
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "fnr-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()

	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close releases the orchestrator, watcher, and history store.
func (s *Server) Close() {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	s.orch.Close()
	if err := s.history.Close(); err != nil {
		s.log.Warn("history close failed", zap.Error(err))
	}
}
