package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Svring/galatea-sub000/internal/embedder"
	"github.com/Svring/galatea-sub000/internal/pipeline"
	"github.com/Svring/galatea-sub000/internal/searcher"
	"github.com/Svring/galatea-sub000/internal/storage"
	"github.com/Svring/galatea-sub000/internal/vectorstore"
)

const (
	// ServerName identifies this MCP server to clients.
	ServerName = "codescout"

	// ServerVersion is the server version reported during initialization.
	ServerVersion = "1.0.0"

	// EnvCachePath overrides where the embedding cache database lives.
	EnvCachePath = "CODESCOUT_CACHE_PATH"

	// DefaultCachePath is the embedding cache location. A leading ~ is
	// expanded to the user's home directory.
	DefaultCachePath = "~/.codescout/embeddings.db"
)

// Server is the MCP server exposing the indexing pipeline over stdio.
type Server struct {
	mcp        *server.MCPServer
	pipeline   *pipeline.Pipeline
	generator  *embedder.Generator
	store      *vectorstore.Store
	searcher   *searcher.Searcher
	cache      *storage.SQLiteStore
	cacheStore embedder.CacheStore
	logger     *slog.Logger
}

// NewServer creates an MCP server wired to the given Qdrant endpoint.
// An empty qdrantURL falls back to the CODESCOUT_QDRANT_URL environment
// variable and then to localhost. Embedding credentials come from the
// environment unless individual tool calls override them.
func NewServer(qdrantURL string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// The embedding cache is an optimization. If it cannot be opened the
	// server still works, it just re-embeds everything.
	cache := openCache(logger)
	var cacheStore embedder.CacheStore
	if cache != nil {
		cacheStore = cache
	}

	store, err := vectorstore.NewStore(qdrantURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vector store: %w", err)
	}

	generator := embedder.NewGenerator(embedder.Config{}, cacheStore, logger)

	s := &Server{
		mcp:        server.NewMCPServer(ServerName, ServerVersion),
		pipeline:   pipeline.New(generator, store, logger),
		generator:  generator,
		store:      store,
		searcher:   searcher.NewSearcher(generator, store, logger),
		cache:      cache,
		cacheStore: cacheStore,
		logger:     logger,
	}

	s.registerTools()

	return s, nil
}

// openCache opens the SQLite embedding cache, creating its directory if
// needed. Any failure is logged and the server continues without a cache.
func openCache(logger *slog.Logger) *storage.SQLiteStore {
	path := os.Getenv(EnvCachePath)
	if path == "" {
		path = DefaultCachePath
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warn("embedding cache disabled, cannot resolve home directory", "error", err)
			return nil
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn("embedding cache disabled, cannot create directory", "path", path, "error", err)
		return nil
	}

	cache, err := storage.NewSQLiteStore(path)
	if err != nil {
		logger.Warn("embedding cache disabled, cannot open database", "path", path, "error", err)
		return nil
	}

	logger.Info("embedding cache ready", "path", path)
	return cache
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	s.mcp.AddTool(findFilesTool(), s.handleFindFiles)
	s.mcp.AddTool(parseFileTool(), s.handleParseFile)
	s.mcp.AddTool(parseDirectoryTool(), s.handleParseDirectory)
	s.mcp.AddTool(generateEmbeddingsTool(), s.handleGenerateEmbeddings)
	s.mcp.AddTool(upsertEmbeddingsTool(), s.handleUpsertEmbeddings)
	s.mcp.AddTool(queryCollectionTool(), s.handleQueryCollection)
	s.mcp.AddTool(buildIndexTool(), s.handleBuildIndex)
}

// Serve starts the MCP server on stdio. It blocks until the client
// disconnects or the transport fails.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if s.cache != nil {
			if err := s.cache.Close(); err != nil {
				s.logger.Error("failed to close embedding cache", "error", err)
			}
		}
		if err := s.store.Close(); err != nil {
			s.logger.Error("failed to close vector store", "error", err)
		}
	}()

	s.logger.Info("starting MCP server", "name", ServerName, "version", ServerVersion)
	return server.ServeStdio(s.mcp)
}

// storeFor returns the vector store a tool call should use. The boolean
// reports whether the caller owns the store and must close it.
func (s *Server) storeFor(url string) (*vectorstore.Store, bool, error) {
	if url == "" {
		return s.store, false, nil
	}
	store, err := vectorstore.NewStore(url, s.logger)
	if err != nil {
		return nil, false, err
	}
	return store, true, nil
}

// generatorFor returns the embedding generator a tool call should use,
// building a one-off generator when the call overrides the model or
// credentials. One-off generators still share the persistent cache.
func (s *Server) generatorFor(args map[string]interface{}) *embedder.Generator {
	model := getStringDefault(args, "model", "")
	apiKey := getStringDefault(args, "api_key", "")
	apiBase := getStringDefault(args, "api_base", "")
	if model == "" && apiKey == "" && apiBase == "" {
		return s.generator
	}
	cfg := embedder.Config{Model: model, APIKey: apiKey, APIBase: apiBase}
	return embedder.NewGenerator(cfg, s.cacheStore, s.logger)
}
