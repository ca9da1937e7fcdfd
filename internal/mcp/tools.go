package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/kss-mcp/internal/indexer"
	"github.com/dshills/kss-mcp/internal/searcher"
	"github.com/dshills/kss-mcp/internal/storage"
	"github.com/dshills/kss-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodePathNotFound       = -32001 // A path to index does not exist or is not a directory
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Style guide not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleIndexStyleguide handles the index_styleguide tool invocation
func (s *Server) handleIndexStyleguide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}

	paths, err := getStringSlice(args, "paths")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid paths", map[string]interface{}{
			"param":  "paths",
			"reason": err.Error(),
		})
	}
	if len(paths) == 0 {
		paths = s.config.Paths
	}
	if len(paths) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "paths parameter is required", map[string]interface{}{
			"param":  "paths",
			"reason": "missing or empty and no paths configured",
		})
	}

	name, err := guideName(args)
	if err != nil {
		return nil, err
	}

	workingDir, err := resolveWorkingDir(getStringDefault(args, "working_dir", s.config.WorkingDir))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid working_dir", map[string]interface{}{
			"param":  "working_dir",
			"reason": err.Error(),
		})
	}

	// Validate every path exists and is accessible
	for _, p := range paths {
		if err := validatePath(resolveAgainst(p, workingDir)); err != nil {
			return nil, newMCPError(ErrorCodePathNotFound, "invalid path", map[string]interface{}{
				"param":  "paths",
				"path":   p,
				"reason": err.Error(),
			})
		}
	}

	if !s.runLock.TryAcquire() {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "another indexing operation is in progress", nil)
	}
	defer s.runLock.Release()

	index, stats, err := s.indexer.BuildIndex(ctx, paths, &indexer.Config{
		WorkingDir: workingDir,
		Workers:    s.config.Workers,
		SkipErrors: getBoolDefault(args, "skip_errors", s.config.SkipErrors),
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	guide := &storage.Guide{
		Name:       name,
		Roots:      paths,
		WorkingDir: workingDir,
	}
	if err := storage.SaveIndex(ctx, s.storage, guide, index, stats); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to save style guide", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.storeIndex(name, index)

	response := map[string]interface{}{
		"indexed":              true,
		"name":                 name,
		"files_scanned":        stats.FilesScanned,
		"files_with_sections":  stats.FilesWithSections,
		"files_failed":         stats.FilesFailed,
		"blocks_found":         stats.BlocksFound,
		"sections_indexed":     stats.SectionsIndexed,
		"sections_rejected":    stats.SectionsRejected,
		"duplicate_references": stats.DuplicateReferences,
		"duration_ms":          stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetSection handles the get_section tool invocation
func (s *Server) handleGetSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}

	name, err := guideName(args)
	if err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(getStringDefault(args, "reference", ""))
	if reference == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "reference parameter is required", map[string]interface{}{
			"param":  "reference",
			"reason": "missing or empty",
		})
	}

	index, err := s.cachedIndex(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notIndexedError(name)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load style guide", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Unknown references come back as the blank section
	section := index.Lookup(reference)

	response := map[string]interface{}{
		"found":     !section.IsEmpty(),
		"name":      name,
		"reference": reference,
		"section":   sectionToMap(section),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchSections handles the search_sections tool invocation
func (s *Server) handleSearchSections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}

	name, err := guideName(args)
	if err != nil {
		return nil, err
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	// Parse optional parameters
	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	mode := searcher.SearchMode(getStringDefault(args, "mode", string(searcher.SearchModeKeyword)))
	if mode != searcher.SearchModeKeyword && mode != searcher.SearchModeReference {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
			"param":   "mode",
			"value":   mode,
			"allowed": []string{string(searcher.SearchModeKeyword), string(searcher.SearchModeReference)},
		})
	}

	guide, err := s.storage.GetGuide(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notIndexedError(name)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load style guide", map[string]interface{}{
			"error": err.Error(),
		})
	}

	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{
		GuideID:  guide.ID,
		Query:    query,
		Limit:    limit,
		Mode:     mode,
		UseCache: true,
		CacheTTL: s.config.CacheTTL,
	})
	if errors.Is(err, storage.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query has no searchable terms", map[string]interface{}{
			"param": "query",
			"value": query,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]interface{}{
			"rank":            r.Rank,
			"relevance_score": r.RelevanceScore,
			"section":         sectionToMap(*r.Section),
		})
	}

	response := map[string]interface{}{
		"name":          name,
		"mode":          string(resp.SearchMode),
		"results":       results,
		"total_results": resp.TotalResults,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}

	name, err := guideName(args)
	if err != nil {
		return nil, err
	}

	guide, err := s.storage.GetGuide(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		// Guide not indexed
		response := map[string]interface{}{
			"indexed": false,
			"name":    name,
			"message": "Style guide not indexed. Use index_styleguide tool to build it.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get style guide status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Get detailed status
	status, err := s.storage.GetStatus(ctx, guide.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":  true,
		"indexing": s.runLock.Held(),
		"guide":    guideToMap(guide),
		"statistics": map[string]interface{}{
			"sections_count":  status.SectionsCount,
			"files_count":     status.FilesCount,
			"modifiers_count": status.ModifiersCount,
			"top_level_count": status.TopLevelCount,
			"index_size_mb":   fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_indexes_built":   status.Health.FTSIndexesBuilt,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListGuides handles the list_guides tool invocation
func (s *Server) handleListGuides(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guides, err := s.storage.ListGuides(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list style guides", map[string]interface{}{
			"error": err.Error(),
		})
	}

	list := make([]map[string]interface{}, 0, len(guides))
	for _, g := range guides {
		list = append(list, guideToMap(g))
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"guides": list,
		"count":  len(list),
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func notIndexedError(name string) error {
	return newMCPError(ErrorCodeNotIndexed, "style guide not indexed", map[string]interface{}{
		"name":    name,
		"message": "Use index_styleguide tool to build it.",
	})
}

// toolArguments returns the call arguments; a call without arguments gets
// an empty map
func toolArguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// guideName extracts the guide name, defaulting to DefaultGuideName
func guideName(args map[string]interface{}) (string, error) {
	raw, present := args["name"]
	if !present {
		return DefaultGuideName, nil
	}
	name, ok := raw.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "name must be a non-empty string", map[string]interface{}{
			"param": "name",
		})
	}
	return strings.TrimSpace(name), nil
}

// resolveWorkingDir returns the absolute working directory, defaulting to
// the process working directory
func resolveWorkingDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return wd, nil
	}
	if err := validatePath(dir); err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

// resolveAgainst makes path absolute against dir
func resolveAgainst(path, dir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// validatePath checks if a path exists and is a readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	// Check if path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	// Check if it's a directory
	if !info.IsDir() {
		return ErrNotDirectory
	}

	// Check if directory is readable
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// sectionToMap renders a section for a tool response. The blank section
// renders with every field empty.
func sectionToMap(section types.Section) map[string]interface{} {
	modifiers := make([]map[string]interface{}, 0, len(section.Modifiers))
	for _, m := range section.Modifiers {
		modifiers = append(modifiers, map[string]interface{}{
			"name":        m.Name,
			"description": m.Description,
			"class_name":  m.ClassName(),
		})
	}

	return map[string]interface{}{
		"reference":   section.Reference,
		"title":       section.Title,
		"description": section.Description,
		"modifiers":   modifiers,
		"filename":    section.Filename,
		"path":        section.Path,
		"depth":       section.Depth(),
	}
}

// guideToMap renders guide metadata for a tool response
func guideToMap(guide *storage.Guide) map[string]interface{} {
	return map[string]interface{}{
		"name":            guide.Name,
		"roots":           guide.Roots,
		"working_dir":     guide.WorkingDir,
		"total_files":     guide.TotalFiles,
		"total_sections":  guide.TotalSections,
		"index_version":   guide.IndexVersion,
		"last_indexed_at": guide.LastIndexedAt.Format(time.RFC3339),
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts an array of strings; a missing key yields nil
func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok || str == "" {
				return nil, fmt.Errorf("element %d is not a non-empty string", i)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected an array of strings")
	}
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
