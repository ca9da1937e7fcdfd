package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// ErrEmptyQuery is returned when a search query has no searchable terms
var ErrEmptyQuery = errors.New("empty search query")

// searchText runs a BM25 ranked full-text search over one guide's sections
func searchText(ctx context.Context, q querier, guideID int64, query string, limit int) ([]TextResult, error) {
	// Sanitize query for FTS5
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}

	sqlQuery := `
		SELECT ` + prefixed("s", sectionColumns) + `,
			bm25(sections_fts) AS score
		FROM sections_fts
		INNER JOIN sections s ON sections_fts.rowid = s.id
		WHERE sections_fts MATCH ?
		AND s.guide_id = ?
		ORDER BY score, s.reference
		LIMIT ?
	`

	rows, err := q.QueryContext(ctx, sqlQuery, sanitized, guideID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]TextResult, 0)
	for rows.Next() {
		var section Section
		var modifiers string
		var score float64
		err := rows.Scan(
			&section.ID, &section.GuideID, &section.Reference, &section.Title,
			&section.Description, &modifiers, &section.Raw,
			&section.Filename, &section.Path, &section.Depth,
			&section.CreatedAt, &section.UpdatedAt, &score,
		)
		if err != nil {
			return nil, err
		}
		if err := decodeModifiers(modifiers, &section); err != nil {
			return nil, err
		}
		results = append(results, TextResult{
			Section:   &section,
			BM25Score: normalizeBM25(score),
		})
	}

	return results, rows.Err()
}

// normalizeBM25 maps an FTS5 bm25() value (negative, lower is better) into
// (0, 1] where higher is better
func normalizeBM25(score float64) float64 {
	return 1.0 / (1.0 + math.Abs(score)/50.0)
}

// sanitizeFTSQuery turns free text into an FTS5 query of quoted terms.
// Every term is a string literal, so FTS5 operators and column filters in
// user input are matched as text. Terms are implicitly ANDed.
func sanitizeFTSQuery(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})

	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if !strings.ContainsFunc(field, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`)
	}

	return strings.Join(terms, " ")
}

// prefixed qualifies a comma separated column list with a table alias
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
