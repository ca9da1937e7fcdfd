// Package searcher implements section search over stored style guides.
//
// Two modes are available:
//   - Keyword: BM25 full-text search over reference, title, description and modifiers
//   - Reference: a section and all of its descendants
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store)
//
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//	    GuideID: guide.ID,
//	    Query:   "primary button",
//	    Limit:   10,
//	    Mode:    searcher.SearchModeKeyword,
//	})
//
//	for _, result := range resp.Results {
//	    fmt.Printf("[%d] %s %s (score: %.2f)\n",
//	        result.Rank, result.Section.Reference, result.Section.Title, result.RelevanceScore)
//	}
//
// # Reference Mode
//
// The query is a reference, optionally written the way it appears in a
// comment ("Styleguide 2.1."). Results are the section itself followed by its
// descendants in table-of-contents order:
//
//	2.1 -> 2.1, 2.1.1, 2.1.2, 2.1.10, 2.1.10.1
//
// "2.10" is not a descendant of "2.1". The exact match scores 1.0 and every
// further level halves the score.
//
// # Caching
//
// With UseCache set, responses are kept in an LRU cache of 1000 entries for
// CacheTTL (default 1 hour). Call InvalidateCache after re-indexing a guide.
// Cached responses are deep copies, so callers may modify what they get back.
package searcher
