package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/kss-mcp/internal/storage"
	"github.com/dshills/kss-mcp/pkg/types"
)

// SearchMode defines how search is performed
type SearchMode string

const (
	SearchModeKeyword   SearchMode = "keyword"   // BM25 text search
	SearchModeReference SearchMode = "reference" // A section and its descendants
)

const (
	defaultLimit    = 10
	maxLimit        = 100
	defaultCacheTTL = time.Hour
	cacheSize       = 1000
)

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query    string
	Limit    int
	Mode     SearchMode
	GuideID  int64
	UseCache bool // Whether to use query cache
	CacheTTL time.Duration
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results      []types.SearchResult
	TotalResults int
	SearchMode   SearchMode
	Duration     time.Duration
	CacheHit     bool
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher runs searches over stored style guides
type Searcher struct {
	storage storage.Storage
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewSearcher creates a new Searcher instance
func NewSearcher(storage storage.Storage) *Searcher {
	// Cache will automatically evict least recently used entries
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		storage: storage,
		cache:   cache,
	}
}

// Search performs a search based on the request parameters
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	if err := s.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	if req.UseCache {
		if cached, ok := s.checkCache(req); ok {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	var response *SearchResponse
	var err error

	switch req.Mode {
	case SearchModeKeyword:
		response, err = s.keywordSearch(ctx, req)
	case SearchModeReference:
		response, err = s.referenceSearch(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode)
	}
	if err != nil {
		return nil, err
	}

	response.Duration = time.Since(startTime)
	response.SearchMode = req.Mode

	if req.UseCache && len(response.Results) > 0 {
		s.storeInCache(req, response)
	}

	return response, nil
}

// keywordSearch performs BM25 text search
func (s *Searcher) keywordSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	textResults, err := s.storage.SearchText(ctx, req.GuideID, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(textResults))
	for i, tr := range textResults {
		section := tr.Section.ToTypesSection()
		results = append(results, types.SearchResult{
			Rank:           i + 1,
			RelevanceScore: tr.BM25Score,
			Section:        &section,
		})
	}

	return &SearchResponse{
		Results:      results,
		TotalResults: len(results),
	}, nil
}

// referenceSearch returns the section named by the query followed by its
// descendants in table-of-contents order. The exact match scores 1 and each
// level below it halves the score.
func (s *Searcher) referenceSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	parent := normalizeReference(req.Query)
	if parent == "" {
		return nil, fmt.Errorf("invalid reference: %q", req.Query)
	}

	sections, err := s.storage.ListSections(ctx, req.GuideID)
	if err != nil {
		return nil, err
	}

	parentDepth := strings.Count(parent, ".") + 1
	results := make([]types.SearchResult, 0)
	for _, stored := range sections {
		if !types.IsWithin(stored.Reference, parent) {
			continue
		}
		if len(results) == req.Limit {
			break
		}

		section := stored.ToTypesSection()
		results = append(results, types.SearchResult{
			Rank:           len(results) + 1,
			RelevanceScore: 1.0 / float64(uint(1)<<(section.Depth()-parentDepth)),
			Section:        &section,
		})
	}

	return &SearchResponse{
		Results:      results,
		TotalResults: len(results),
	}, nil
}

// normalizeReference trims the query down to a bare reference: "Styleguide
// 2.1." and " 2.1 " both become "2.1"
func normalizeReference(query string) string {
	ref := strings.TrimSpace(query)
	if after, ok := strings.CutPrefix(ref, "Styleguide"); ok {
		ref = strings.TrimSpace(after)
	}
	return strings.TrimRight(ref, ".")
}

// validateRequest ensures search request is valid
func (s *Searcher) validateRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}

	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}

	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	if req.Mode == "" {
		req.Mode = SearchModeKeyword
	}

	if req.CacheTTL == 0 {
		req.CacheTTL = defaultCacheTTL
	}

	return nil
}

// checkCache looks up cached search results
func (s *Searcher) checkCache(req SearchRequest) (*SearchResponse, bool) {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil, false
	}

	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()

		// Remove expired entry - need write lock
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil, false
	}

	response := copySearchResponse(entry.response)
	s.cacheMu.RUnlock()

	return response, true
}

// storeInCache saves search results to cache
func (s *Searcher) storeInCache(req SearchRequest, response *SearchResponse) {
	entry := &cacheEntry{
		response:  copySearchResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}

	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// copySearchResponse creates a deep copy of a SearchResponse
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}

	dst := &SearchResponse{
		TotalResults: src.TotalResults,
		SearchMode:   src.SearchMode,
		Duration:     src.Duration,
		CacheHit:     src.CacheHit,
		Results:      make([]types.SearchResult, len(src.Results)),
	}

	for i, result := range src.Results {
		dst.Results[i] = types.SearchResult{
			Rank:           result.Rank,
			RelevanceScore: result.RelevanceScore,
		}
		if result.Section != nil {
			sectionCopy := *result.Section
			sectionCopy.Modifiers = append([]types.Modifier(nil), result.Section.Modifiers...)
			dst.Results[i].Section = &sectionCopy
		}
	}

	return dst
}

// computeQueryHash computes a unique hash for a search request
func computeQueryHash(req SearchRequest) [32]byte {
	var data strings.Builder
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(string(req.Mode))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d|%d", req.GuideID, req.Limit))

	return sha256.Sum256([]byte(data.String()))
}

// InvalidateCache drops every cached response. Called after a guide is
// re-indexed; the LRU cannot filter by guide so the whole cache goes.
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// CacheLen returns the number of cached responses
func (s *Searcher) CacheLen() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}
