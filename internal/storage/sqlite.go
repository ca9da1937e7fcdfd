package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dshills/kss-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrNestedTx is returned when BeginTx is called on a transaction
	ErrNestedTx = errors.New("nested transactions are not supported")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Guide operations

const guideColumns = `
	id, name, roots, working_dir, total_files, total_sections,
	index_version, last_indexed_at, created_at, updated_at`

// scanGuide reads one guide row selected with guideColumns
func scanGuide(row rowScanner) (*Guide, error) {
	var guide Guide
	var roots string
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&guide.ID, &guide.Name, &roots, &guide.WorkingDir,
		&guide.TotalFiles, &guide.TotalSections, &guide.IndexVersion,
		&lastIndexedAt, &guide.CreatedAt, &guide.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(roots), &guide.Roots); err != nil {
		return nil, fmt.Errorf("invalid roots for guide %s: %w", guide.Name, err)
	}
	if lastIndexedAt.Valid {
		guide.LastIndexedAt = lastIndexedAt.Time
	}
	return &guide, nil
}

// createGuideWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createGuideWithQuerier(ctx context.Context, q querier, guide *Guide) error {
	if _, err := s.getGuideWithQuerier(ctx, q, guide.Name); err == nil {
		return fmt.Errorf("guide %s: %w", guide.Name, ErrAlreadyExists)
	} else if err != ErrNotFound {
		return err
	}

	roots, err := encodeRoots(guide.Roots)
	if err != nil {
		return err
	}
	if guide.IndexVersion == "" {
		guide.IndexVersion = CurrentSchemaVersion
	}

	query := `
		INSERT INTO guides (name, roots, working_dir, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		guide.Name, roots, guide.WorkingDir, guide.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create guide: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	guide.ID = id
	guide.CreatedAt = now
	guide.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateGuide(ctx context.Context, guide *Guide) error {
	return s.createGuideWithQuerier(ctx, s.querier(), guide)
}

// getGuideWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getGuideWithQuerier(ctx context.Context, q querier, name string) (*Guide, error) {
	query := `SELECT ` + guideColumns + ` FROM guides WHERE name = ?`
	guide, err := scanGuide(q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return guide, err
}

func (s *SQLiteStorage) GetGuide(ctx context.Context, name string) (*Guide, error) {
	return s.getGuideWithQuerier(ctx, s.querier(), name)
}

// getGuideByID retrieves a guide by ID
func (s *SQLiteStorage) getGuideByID(ctx context.Context, q querier, guideID int64) (*Guide, error) {
	query := `SELECT ` + guideColumns + ` FROM guides WHERE id = ?`
	guide, err := scanGuide(q.QueryRowContext(ctx, query, guideID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return guide, err
}

// updateGuideWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateGuideWithQuerier(ctx context.Context, q querier, guide *Guide) error {
	roots, err := encodeRoots(guide.Roots)
	if err != nil {
		return err
	}

	query := `
		UPDATE guides
		SET roots = ?, working_dir = ?, total_files = ?, total_sections = ?,
		    last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		roots, guide.WorkingDir, guide.TotalFiles, guide.TotalSections,
		guide.LastIndexedAt, now, guide.ID)
	if err != nil {
		return fmt.Errorf("failed to update guide: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	guide.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateGuide(ctx context.Context, guide *Guide) error {
	return s.updateGuideWithQuerier(ctx, s.querier(), guide)
}

// listGuidesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listGuidesWithQuerier(ctx context.Context, q querier) ([]*Guide, error) {
	query := `SELECT ` + guideColumns + ` FROM guides ORDER BY name`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	guides := make([]*Guide, 0)
	for rows.Next() {
		guide, err := scanGuide(rows)
		if err != nil {
			return nil, err
		}
		guides = append(guides, guide)
	}
	return guides, rows.Err()
}

func (s *SQLiteStorage) ListGuides(ctx context.Context) ([]*Guide, error) {
	return s.listGuidesWithQuerier(ctx, s.querier())
}

// deleteGuideWithQuerier removes a guide; its sections go with it by cascade
func (s *SQLiteStorage) deleteGuideWithQuerier(ctx context.Context, q querier, guideID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM guides WHERE id = ?", guideID)
	return err
}

func (s *SQLiteStorage) DeleteGuide(ctx context.Context, guideID int64) error {
	return s.deleteGuideWithQuerier(ctx, s.querier(), guideID)
}

// Section operations

const sectionColumns = `
	id, guide_id, reference, title, description, modifiers, raw,
	filename, path, depth, created_at, updated_at`

// scanSection reads one section row selected with sectionColumns
func scanSection(row rowScanner) (*Section, error) {
	var section Section
	var modifiers string
	err := row.Scan(
		&section.ID, &section.GuideID, &section.Reference, &section.Title,
		&section.Description, &modifiers, &section.Raw,
		&section.Filename, &section.Path, &section.Depth,
		&section.CreatedAt, &section.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeModifiers(modifiers, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// decodeModifiers fills section.Modifiers from the modifiers column
func decodeModifiers(encoded string, section *Section) error {
	if err := json.Unmarshal([]byte(encoded), &section.Modifiers); err != nil {
		return fmt.Errorf("invalid modifiers for section %s: %w", section.Reference, err)
	}
	return nil
}

// upsertSectionWithQuerier inserts a section or replaces the one stored under
// the same guide and reference
func (s *SQLiteStorage) upsertSectionWithQuerier(ctx context.Context, q querier, section *Section) error {
	if section.Reference == "" {
		return types.ErrEmptyReference
	}

	modifiers := section.Modifiers
	if modifiers == nil {
		modifiers = []types.Modifier{}
	}
	encoded, err := json.Marshal(modifiers)
	if err != nil {
		return fmt.Errorf("failed to encode modifiers: %w", err)
	}

	query := `
		INSERT INTO sections (guide_id, reference, title, description, modifiers, raw,
		                      filename, path, depth, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guide_id, reference) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			modifiers = excluded.modifiers,
			raw = excluded.raw,
			filename = excluded.filename,
			path = excluded.path,
			depth = excluded.depth,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	var id int64
	err = q.QueryRowContext(ctx, query,
		section.GuideID, section.Reference, section.Title, section.Description,
		string(encoded), section.Raw, section.Filename, section.Path, section.Depth,
		now, now,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to upsert section: %w", err)
	}

	section.ID = id
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertSection(ctx context.Context, section *Section) error {
	return s.upsertSectionWithQuerier(ctx, s.querier(), section)
}

// getSectionWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getSectionWithQuerier(ctx context.Context, q querier, guideID int64, reference string) (*Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE guide_id = ? AND reference = ?`
	section, err := scanSection(q.QueryRowContext(ctx, query, guideID, reference))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return section, err
}

func (s *SQLiteStorage) GetSection(ctx context.Context, guideID int64, reference string) (*Section, error) {
	return s.getSectionWithQuerier(ctx, s.querier(), guideID, reference)
}

// listSectionsWithQuerier returns a guide's sections in table-of-contents order
func (s *SQLiteStorage) listSectionsWithQuerier(ctx context.Context, q querier, guideID int64) ([]*Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE guide_id = ?`
	rows, err := q.QueryContext(ctx, query, guideID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	sections := make([]*Section, 0)
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(sections, func(i, j int) bool {
		return types.CompareReferences(sections[i].Reference, sections[j].Reference) < 0
	})
	return sections, nil
}

func (s *SQLiteStorage) ListSections(ctx context.Context, guideID int64) ([]*Section, error) {
	return s.listSectionsWithQuerier(ctx, s.querier(), guideID)
}

// deleteSectionsByGuideWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteSectionsByGuideWithQuerier(ctx context.Context, q querier, guideID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM sections WHERE guide_id = ?", guideID)
	return err
}

func (s *SQLiteStorage) DeleteSectionsByGuide(ctx context.Context, guideID int64) error {
	return s.deleteSectionsByGuideWithQuerier(ctx, s.querier(), guideID)
}

// Search operations

func (s *SQLiteStorage) SearchText(ctx context.Context, guideID int64, query string, limit int) ([]TextResult, error) {
	return searchText(ctx, s.querier(), guideID, query, limit)
}

// Status operations

// getStatusWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, guideID int64) (*GuideStatus, error) {
	guide, err := s.getGuideByID(ctx, q, guideID)
	if err != nil {
		return nil, err
	}

	status := &GuideStatus{
		Guide:         guide,
		LastIndexedAt: guide.LastIndexedAt,
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT path || '/' || filename),
		       COALESCE(SUM(json_array_length(modifiers)), 0),
		       COALESCE(SUM(CASE WHEN depth = 1 THEN 1 ELSE 0 END), 0)
		FROM sections
		WHERE guide_id = ?
	`, guideID).Scan(&status.SectionsCount, &status.FilesCount, &status.ModifiersCount, &status.TopLevelCount)
	if err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	var ftsTable string
	ftsErr := q.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='sections_fts'").Scan(&ftsTable)

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexesBuilt:    ftsErr == nil,
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, guideID int64) (*GuideStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier(), guideID)
}

// encodeRoots serializes guide roots for the roots column
func encodeRoots(roots []string) (string, error) {
	if roots == nil {
		roots = []string{}
	}
	encoded, err := json.Marshal(roots)
	if err != nil {
		return "", fmt.Errorf("failed to encode roots: %w", err)
	}
	return string(encoded), nil
}

// Transaction implementations: every operation runs on the transaction

func (t *sqliteTx) CreateGuide(ctx context.Context, guide *Guide) error {
	return t.storage.createGuideWithQuerier(ctx, t.querier(), guide)
}

func (t *sqliteTx) GetGuide(ctx context.Context, name string) (*Guide, error) {
	return t.storage.getGuideWithQuerier(ctx, t.querier(), name)
}

func (t *sqliteTx) UpdateGuide(ctx context.Context, guide *Guide) error {
	return t.storage.updateGuideWithQuerier(ctx, t.querier(), guide)
}

func (t *sqliteTx) ListGuides(ctx context.Context) ([]*Guide, error) {
	return t.storage.listGuidesWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteGuide(ctx context.Context, guideID int64) error {
	return t.storage.deleteGuideWithQuerier(ctx, t.querier(), guideID)
}

func (t *sqliteTx) UpsertSection(ctx context.Context, section *Section) error {
	return t.storage.upsertSectionWithQuerier(ctx, t.querier(), section)
}

func (t *sqliteTx) GetSection(ctx context.Context, guideID int64, reference string) (*Section, error) {
	return t.storage.getSectionWithQuerier(ctx, t.querier(), guideID, reference)
}

func (t *sqliteTx) ListSections(ctx context.Context, guideID int64) ([]*Section, error) {
	return t.storage.listSectionsWithQuerier(ctx, t.querier(), guideID)
}

func (t *sqliteTx) DeleteSectionsByGuide(ctx context.Context, guideID int64) error {
	return t.storage.deleteSectionsByGuideWithQuerier(ctx, t.querier(), guideID)
}

func (t *sqliteTx) SearchText(ctx context.Context, guideID int64, query string, limit int) ([]TextResult, error) {
	return searchText(ctx, t.querier(), guideID, query, limit)
}

func (t *sqliteTx) GetStatus(ctx context.Context, guideID int64) (*GuideStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier(), guideID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, ErrNestedTx
}
