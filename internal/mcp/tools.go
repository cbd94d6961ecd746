package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Svring/galatea-sub000/internal/discovery"
	"github.com/Svring/galatea-sub000/internal/embedder"
	"github.com/Svring/galatea-sub000/internal/pipeline"
	"github.com/Svring/galatea-sub000/internal/searcher"
	"github.com/Svring/galatea-sub000/pkg/types"
)

// MCP error codes. -32602 and -32603 follow JSON-RPC conventions;
// server-specific codes start at -32001.
const (
	ErrorCodeInvalidParams       = -32602 // Invalid method parameters
	ErrorCodeInternalError       = -32603 // Internal server error
	ErrorCodePathNotFound        = -32001 // Requested path does not exist
	ErrorCodeBuildInProgress     = -32002 // An index build is already running
	ErrorCodeUnsupportedLanguage = -32003 // File extension has no registered grammar
	ErrorCodeEmptyQuery          = -32004 // Query text was empty
)

// handleFindFiles implements the find_files tool.
func (s *Server) handleFindFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	dir, ok := args["dir"].(string)
	if !ok || dir == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "dir parameter is required", map[string]interface{}{
			"param":  "dir",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(dir); err != nil {
		return nil, newMCPError(pathErrorCode(err), err.Error(), map[string]interface{}{"path": dir})
	}

	suffixes := getStringSlice(args, "suffixes")
	if len(suffixes) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "suffixes parameter is required", map[string]interface{}{
			"param":  "suffixes",
			"reason": "missing or empty",
		})
	}

	excludeDirs := getStringSlice(args, "exclude_dirs")
	if len(excludeDirs) == 0 {
		excludeDirs = discovery.DefaultExcludeDirs
	}

	files, err := discovery.FindFiles(dir, suffixes, excludeDirs)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("file discovery failed: %v", err), nil)
	}

	response := map[string]interface{}{
		"files": files,
		"count": len(files),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleParseFile implements the parse_file tool.
func (s *Server) handleParseFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filePath, ok := args["file_path"].(string)
	if !ok || filePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file_path parameter is required", map[string]interface{}{
			"param":  "file_path",
			"reason": "missing or empty",
		})
	}
	maxSnippetSize := getIntDefault(args, "max_snippet_size", 0)

	// Absolute paths to existing files are used as-is. Anything else is
	// treated as a path suffix and resolved against the working directory.
	resolved := filePath
	if !filepath.IsAbs(filePath) || !fileExists(filePath) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("failed to determine working directory: %v", err), nil)
		}
		resolved, err = discovery.ResolveFileBySuffix(cwd, filePath)
		if err != nil {
			if errors.Is(err, discovery.ErrAmbiguousSuffix) {
				return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{"file_path": filePath})
			}
			return nil, newMCPError(ErrorCodePathNotFound, err.Error(), map[string]interface{}{"file_path": filePath})
		}
	}

	if !s.pipeline.Supports(resolved) {
		return nil, newMCPError(ErrorCodeUnsupportedLanguage,
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(resolved)),
			map[string]interface{}{"file_path": resolved})
	}

	entities, err := s.pipeline.ExtractFile(resolved, maxSnippetSize)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("extraction failed: %v", err), map[string]interface{}{"file_path": resolved})
	}

	response := map[string]interface{}{
		"file_path": resolved,
		"count":     len(entities),
		"entities":  entities,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleParseDirectory implements the parse_directory tool.
func (s *Server) handleParseDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	opts, mcpErr := extractOptions(args)
	if mcpErr != nil {
		return nil, mcpErr
	}

	entities, stats, err := s.pipeline.ExtractDirectory(ctx, *opts)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("extraction failed: %v", err), nil)
	}

	response := map[string]interface{}{
		"count":         len(entities),
		"files_found":   stats.FilesFound,
		"files_parsed":  stats.FilesParsed,
		"files_skipped": stats.FilesSkipped,
		"files_failed":  stats.FilesFailed,
		"entities":      entities,
	}
	attachErrors(response, stats.ErrorMessages)
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGenerateEmbeddings implements the generate_embeddings tool.
func (s *Server) handleGenerateEmbeddings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	inputFile, ok := args["input_file"].(string)
	if !ok || inputFile == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "input_file parameter is required", map[string]interface{}{
			"param":  "input_file",
			"reason": "missing or empty",
		})
	}
	outputFile, ok := args["output_file"].(string)
	if !ok || outputFile == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "output_file parameter is required", map[string]interface{}{
			"param":  "output_file",
			"reason": "missing or empty",
		})
	}

	gen := s.generatorFor(args)
	stats, err := gen.GenerateFile(ctx, inputFile, outputFile)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil, newMCPError(ErrorCodePathNotFound, err.Error(), map[string]interface{}{"input_file": inputFile})
		case errors.Is(err, embedder.ErrMissingAPIKey):
			return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{"param": "api_key"})
		default:
			return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("embedding generation failed: %v", err), nil)
		}
	}

	response := map[string]interface{}{
		"output_file": outputFile,
		"requested":   stats.Requested,
		"embedded":    stats.Embedded,
		"cache_hits":  stats.CacheHits,
		"failed":      stats.Failed,
	}
	attachErrors(response, stats.ErrorMessages)
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpsertEmbeddings implements the upsert_embeddings tool.
func (s *Server) handleUpsertEmbeddings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	inputFile, ok := args["input_file"].(string)
	if !ok || inputFile == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "input_file parameter is required", map[string]interface{}{
			"param":  "input_file",
			"reason": "missing or empty",
		})
	}
	collection, ok := args["collection_name"].(string)
	if !ok || collection == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "collection_name parameter is required", map[string]interface{}{
			"param":  "collection_name",
			"reason": "missing or empty",
		})
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newMCPError(ErrorCodePathNotFound, err.Error(), map[string]interface{}{"input_file": inputFile})
		}
		return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("failed to read input file: %v", err), nil)
	}
	var entities []types.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("input file is not a valid entity file: %v", err),
			map[string]interface{}{"input_file": inputFile})
	}

	store, owned, err := s.storeFor(getStringDefault(args, "qdrant_url", ""))
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("failed to connect to vector store: %v", err), nil)
	}
	if owned {
		defer store.Close()
	}

	// Collection creation can fail when another client just created it,
	// so a failure here only warns and the upsert decides.
	if err := store.EnsureCollection(ctx, collection); err != nil {
		s.logger.Warn("failed to ensure collection, attempting upsert anyway", "collection", collection, "error", err)
	}

	count, err := store.Upsert(ctx, collection, entities)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("upsert failed: %v", err), map[string]interface{}{"collection": collection})
	}

	response := map[string]interface{}{
		"collection":      collection,
		"entities_read":   len(entities),
		"points_upserted": count,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleQueryCollection implements the query_collection tool.
func (s *Server) handleQueryCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	collection, ok := args["collection_name"].(string)
	if !ok || collection == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "collection_name parameter is required", map[string]interface{}{
			"param":  "collection_name",
			"reason": "missing or empty",
		})
	}
	queryText, _ := args["query_text"].(string)
	if strings.TrimSpace(queryText) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query_text must not be empty", map[string]interface{}{
			"param":  "query_text",
			"reason": "missing or empty",
		})
	}
	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("limit must be between 1 and %d", searcher.MaxLimit),
			map[string]interface{}{"param": "limit"})
	}
	useCache := getBoolDefault(args, "use_cache", true)

	qdrantURL := getStringDefault(args, "qdrant_url", "")
	gen := s.generatorFor(args)

	search := s.searcher
	if gen != s.generator || qdrantURL != "" {
		store, owned, err := s.storeFor(qdrantURL)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("failed to connect to vector store: %v", err), nil)
		}
		if owned {
			defer store.Close()
		}
		search = searcher.NewSearcher(gen, store, s.logger)
	}

	resp, err := search.Query(ctx, searcher.QueryRequest{
		Query:      queryText,
		Collection: collection,
		Limit:      limit,
		UseCache:   useCache,
	})
	if err != nil {
		switch {
		case errors.Is(err, searcher.ErrEmptyQuery):
			return nil, newMCPError(ErrorCodeEmptyQuery, err.Error(), nil)
		case errors.Is(err, embedder.ErrMissingAPIKey):
			return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{"param": "api_key"})
		default:
			return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("query failed: %v", err), map[string]interface{}{"collection": collection})
		}
	}

	response := map[string]interface{}{
		"collection":    collection,
		"query":         queryText,
		"total_results": resp.TotalResults,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
		"results":       resp.Results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleBuildIndex implements the build_index tool. The build itself runs
// in the background; the response only confirms it started.
func (s *Server) handleBuildIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	opts, mcpErr := extractOptions(args)
	if mcpErr != nil {
		return nil, mcpErr
	}
	collection, ok := args["collection_name"].(string)
	if !ok || collection == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "collection_name parameter is required", map[string]interface{}{
			"param":  "collection_name",
			"reason": "missing or empty",
		})
	}

	qdrantURL := getStringDefault(args, "qdrant_url", "")
	gen := s.generatorFor(args)

	pipe := s.pipeline
	var cleanup func()
	if gen != s.generator || qdrantURL != "" {
		store, owned, err := s.storeFor(qdrantURL)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("failed to connect to vector store: %v", err), nil)
		}
		pipe = pipeline.New(gen, store, s.logger)
		if owned {
			cleanup = func() { _ = store.Close() }
		}
	}

	err := pipe.BuildIndexBackground(*opts, collection, func(stats *pipeline.Statistics, buildErr error) {
		if cleanup != nil {
			cleanup()
		}
		// Indexed content changed, cached query results are stale.
		if s.searcher != nil {
			s.searcher.InvalidateCache()
		}
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrBuildInProgress) {
			return nil, newMCPError(ErrorCodeBuildInProgress, "an index build is already running", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, fmt.Sprintf("failed to start index build: %v", err), nil)
	}

	response := map[string]interface{}{
		"started":    true,
		"dir":        opts.Root,
		"collection": collection,
		"message":    "index build started in the background, watch the server log for progress",
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// extractOptions reads the shared extraction parameters used by
// parse_directory and build_index.
func extractOptions(args map[string]interface{}) (*pipeline.Options, *MCPError) {
	dir, ok := args["dir"].(string)
	if !ok || dir == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "dir parameter is required", map[string]interface{}{
			"param":  "dir",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(dir); err != nil {
		return nil, newMCPError(pathErrorCode(err), err.Error(), map[string]interface{}{"path": dir})
	}

	suffixes := getStringSlice(args, "suffixes")
	if len(suffixes) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "suffixes parameter is required", map[string]interface{}{
			"param":  "suffixes",
			"reason": "missing or empty",
		})
	}

	excludeDirs := getStringSlice(args, "exclude_dirs")
	if len(excludeDirs) == 0 {
		excludeDirs = discovery.DefaultExcludeDirs
	}

	return &pipeline.Options{
		Root:           dir,
		Extensions:     suffixes,
		ExcludeDirs:    excludeDirs,
		MaxSnippetSize: getIntDefault(args, "max_snippet_size", 0),
		// Unknown granularity values fall back to fine-grained merging
		Granularity: types.GranularityOrDefault(getStringDefault(args, "granularity", "")),
	}, nil
}

// Argument helpers. MCP arguments arrive as generic JSON, so numbers are
// float64 and arrays are []interface{}.

func getBoolDefault(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func getIntDefault(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func getStringDefault(args map[string]interface{}, key string, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// getStringSlice reads a string array argument, dropping non-string and
// empty items.
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// attachErrors adds up to five error messages to a response, plus the
// total count when some were dropped.
func attachErrors(response map[string]interface{}, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	shown := msgs
	if len(shown) > 5 {
		shown = shown[:5]
	}
	response["errors"] = shown
	response["error_count"] = len(msgs)
}

// formatJSON renders a response as indented JSON for the text result.
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// MCPError is a structured error returned to MCP clients.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) *MCPError {
	return &MCPError{Code: code, Message: message, Data: data}
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)

// validatePath checks that a directory argument names an absolute,
// existing, readable directory.
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %s", ErrPathNotAbsolute, path)
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotReadable, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotReadable, path)
	}
	_ = f.Close()
	return nil
}

// pathErrorCode maps a validatePath failure to an MCP error code.
func pathErrorCode(err error) int {
	if errors.Is(err, ErrPathNotFound) {
		return ErrorCodePathNotFound
	}
	return ErrorCodeInvalidParams
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
