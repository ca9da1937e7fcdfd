package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/kss-mcp/internal/indexer"
	"github.com/dshills/kss-mcp/pkg/types"
)

// SaveIndex stores index as the complete contents of guide, creating the
// guide if needed. Sections of an earlier build are replaced, all in one
// transaction. On success guide holds its stored ID, totals and timestamps.
func SaveIndex(ctx context.Context, store Storage, guide *Guide, index *indexer.Index, stats *indexer.Statistics) (err error) {
	if guide == nil || guide.Name == "" {
		return errors.New("guide name is required")
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := tx.GetGuide(ctx, guide.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		if err = tx.CreateGuide(ctx, guide); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("failed to load guide: %w", err)
	default:
		guide.ID = existing.ID
		guide.CreatedAt = existing.CreatedAt
		guide.IndexVersion = existing.IndexVersion
	}

	if err = tx.DeleteSectionsByGuide(ctx, guide.ID); err != nil {
		return fmt.Errorf("failed to clear sections: %w", err)
	}

	for _, section := range index.Sections() {
		if err = tx.UpsertSection(ctx, FromTypesSection(section, guide.ID)); err != nil {
			return fmt.Errorf("section %s: %w", section.Reference, err)
		}
	}

	guide.TotalSections = index.Len()
	if stats != nil {
		guide.TotalFiles = stats.FilesScanned
	}
	guide.LastIndexedAt = time.Now()
	if err = tx.UpdateGuide(ctx, guide); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	return nil
}

// LoadIndex rebuilds the in-memory index of a stored guide
func LoadIndex(ctx context.Context, store Storage, name string) (*indexer.Index, *Guide, error) {
	guide, err := store.GetGuide(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	stored, err := store.ListSections(ctx, guide.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sections: %w", err)
	}

	sections := make([]types.Section, 0, len(stored))
	for _, s := range stored {
		sections = append(sections, s.ToTypesSection())
	}

	return indexer.NewIndexFromSections(sections), guide, nil
}
