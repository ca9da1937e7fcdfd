package types

import "errors"

// Domain errors for type validation
var (
	// Section errors
	ErrEmptyReference    = errors.New("section reference cannot be empty")
	ErrEmptyModifierName = errors.New("modifier name cannot be empty")

	// Search result errors
	ErrInvalidRank           = errors.New("rank must be >= 1")
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
	ErrMissingSection        = errors.New("section is required")
)
