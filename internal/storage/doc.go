// Package storage provides SQLite-based persistence for built style guides.
//
// The storage layer manages:
//   - Guide metadata (name, source roots, working directory, totals)
//   - Sections, one row per guide and reference
//   - A full-text search index over sections
//
// # Database Schema
//
// Tables:
//   - guides: one row per named style guide
//   - sections: parsed sections, unique on (guide_id, reference)
//   - sections_fts: FTS5 index over reference, title, description and modifiers
//   - schema_version: applied migrations
//
// Modifiers and guide roots are stored as JSON text.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.kssmcp/styleguides.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	index, stats, err := indexer.New().BuildIndex(ctx, roots, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	guide := &storage.Guide{Name: "site", Roots: roots}
//	if err := storage.SaveIndex(ctx, store, guide, index, stats); err != nil {
//	    log.Fatal(err)
//	}
//
// SaveIndex replaces everything previously stored for the guide in a single
// transaction. LoadIndex reads it back as an *indexer.Index.
//
// # Transactions
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.UpsertSection(ctx, section); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// UpsertSection keeps one row per reference. Writing a reference again
// replaces the stored section.
//
// # Full-Text Search
//
//	results, err := store.SearchText(ctx, guide.ID, "button hover", 10)
//	for _, r := range results {
//	    fmt.Printf("%s %s (%.3f)\n", r.Section.Reference, r.Section.Title, r.BM25Score)
//	}
//
// Query text is split into terms and every term is quoted, so FTS5 syntax
// in user input is searched literally. All terms must match. Scores are BM25
// normalized into (0, 1], higher is better.
//
// # Build Tags
//
// CGO Build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Requires C compiler and the sqlite_fts5 tag
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo,sqlite_fts5"
//
// Pure Go Build (default, or purego tag):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build -tags "purego"
package storage
