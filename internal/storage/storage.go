package storage

import (
	"context"
	"time"

	"github.com/dshills/kss-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying built style guides
type Storage interface {
	// Guide operations
	CreateGuide(ctx context.Context, guide *Guide) error
	GetGuide(ctx context.Context, name string) (*Guide, error)
	UpdateGuide(ctx context.Context, guide *Guide) error
	ListGuides(ctx context.Context) ([]*Guide, error)
	DeleteGuide(ctx context.Context, guideID int64) error

	// Section operations
	UpsertSection(ctx context.Context, section *Section) error
	GetSection(ctx context.Context, guideID int64, reference string) (*Section, error)
	ListSections(ctx context.Context, guideID int64) ([]*Section, error)
	DeleteSectionsByGuide(ctx context.Context, guideID int64) error

	// Search operations
	SearchText(ctx context.Context, guideID int64, query string, limit int) ([]TextResult, error)

	// Status operations
	GetStatus(ctx context.Context, guideID int64) (*GuideStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Guide represents a named style guide built from a set of source directories
type Guide struct {
	ID            int64
	Name          string
	Roots         []string // Source directories as given to the indexer
	WorkingDir    string   // Directory section paths are relative to
	TotalFiles    int
	TotalSections int
	IndexVersion  string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Section represents a stored style guide section
type Section struct {
	ID          int64
	GuideID     int64
	Reference   string
	Title       string
	Description string
	Modifiers   []types.Modifier // Stored as JSON
	Raw         string
	Filename    string
	Path        string
	Depth       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TextResult represents a result from full-text search
type TextResult struct {
	Section   *Section
	BM25Score float64 // Normalized to (0, 1], higher is better
}

// GuideStatus contains statistics about a stored style guide
type GuideStatus struct {
	Guide          *Guide
	SectionsCount  int
	FilesCount     int // Distinct source files contributing sections
	ModifiersCount int
	TopLevelCount  int // Sections with a single-level reference
	IndexSizeMB    float64
	LastIndexedAt  time.Time
	Health         HealthStatus
}

// HealthStatus represents the health of the catalogue
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
}

// ToTypesSection converts storage Section to types.Section
func (s *Section) ToTypesSection() types.Section {
	return types.Section{
		Reference:   s.Reference,
		Title:       s.Title,
		Description: s.Description,
		Modifiers:   s.Modifiers,
		Raw:         s.Raw,
		Filename:    s.Filename,
		Path:        s.Path,
	}
}

// FromTypesSection converts types.Section to storage Section
func FromTypesSection(s types.Section, guideID int64) *Section {
	return &Section{
		GuideID:     guideID,
		Reference:   s.Reference,
		Title:       s.Title,
		Description: s.Description,
		Modifiers:   s.Modifiers,
		Raw:         s.Raw,
		Filename:    s.Filename,
		Path:        s.Path,
		Depth:       s.Depth(),
	}
}
