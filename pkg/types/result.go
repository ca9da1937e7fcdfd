package types

// SearchResult represents a single search result with relevance information
type SearchResult struct {
	Rank int // Position in result set (1-based)

	// Scoring
	RelevanceScore float64 // Normalized BM25 score, 1.0 for exact reference matches

	Section *Section
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.Rank < 1 {
		return ErrInvalidRank
	}

	if sr.RelevanceScore < 0 || sr.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}

	if sr.Section == nil {
		return ErrMissingSection
	}

	return sr.Section.Validate()
}
