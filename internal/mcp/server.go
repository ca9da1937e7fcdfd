package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/kss-mcp/internal/config"
	"github.com/dshills/kss-mcp/internal/indexer"
	"github.com/dshills/kss-mcp/internal/logging"
	"github.com/dshills/kss-mcp/internal/searcher"
	"github.com/dshills/kss-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "kss-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultGuideName names the guide used when a tool call gives none
	DefaultGuideName = "default"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	config   *config.Config
	logger   *slog.Logger

	// runLock rejects an index_styleguide call while another is running
	runLock indexer.RunLock

	// indexes caches built indexes by guide name for get_section
	indexesMu sync.RWMutex
	indexes   map[string]*indexer.Index
}

// NewServer creates a new MCP server instance backed by the catalogue
// database named in cfg
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	dbFile, err := cfg.DatabaseFile()
	if err != nil {
		return nil, err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return newServerWithStorage(store, cfg, logger), nil
}

// newServerWithStorage wires a server around an open store
func newServerWithStorage(store storage.Storage, cfg *config.Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		mcp: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(false),
		),
		storage:  store,
		indexer:  indexer.New().WithLogger(logger),
		searcher: searcher.NewSearcher(store),
		config:   cfg,
		logger:   logger,
		indexes:  make(map[string]*indexer.Index),
	}

	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()

	stdio := server.NewStdioServer(s.mcp)
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the catalogue database
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexStyleguideTool(), s.handleIndexStyleguide)
	s.mcp.AddTool(getSectionTool(), s.handleGetSection)
	s.mcp.AddTool(searchSectionsTool(), s.handleSearchSections)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(listGuidesTool(), s.handleListGuides)
}

// cachedIndex returns the in-memory index of a guide, loading it from the
// catalogue on first use
func (s *Server) cachedIndex(ctx context.Context, name string) (*indexer.Index, error) {
	s.indexesMu.RLock()
	index, ok := s.indexes[name]
	s.indexesMu.RUnlock()
	if ok {
		return index, nil
	}

	index, _, err := storage.LoadIndex(ctx, s.storage, name)
	if err != nil {
		return nil, err
	}

	s.indexesMu.Lock()
	s.indexes[name] = index
	s.indexesMu.Unlock()
	return index, nil
}

// storeIndex replaces the cached index of a guide after a rebuild
func (s *Server) storeIndex(name string, index *indexer.Index) {
	s.indexesMu.Lock()
	s.indexes[name] = index
	s.indexesMu.Unlock()

	s.searcher.InvalidateCache()
}
