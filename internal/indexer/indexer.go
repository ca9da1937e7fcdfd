package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/kss-mcp/internal/parser"
	"github.com/dshills/kss-mcp/pkg/types"
)

// CommentExtractor returns the comment blocks of a file, comment syntax removed
type CommentExtractor interface {
	ExtractBlocks(path string) ([]string, error)
}

// SectionParser builds a section from a documentation block found in file
// base inside directory dir
type SectionParser interface {
	ParseSection(block, dir, base string) types.Section
}

// Indexer builds style guide indexes: walk -> extract -> classify -> parse -> insert
type Indexer struct {
	extractor CommentExtractor
	parser    SectionParser
	logger    *slog.Logger
}

// Config contains configuration for a single BuildIndex call
type Config struct {
	// WorkingDir is stripped from section paths and resolves relative input
	// paths (default: the process working directory at call time)
	WorkingDir string
	// Workers is the number of files extracted concurrently (default: runtime.NumCPU())
	Workers int
	// SkipErrors records unreadable files in Statistics instead of failing the build
	SkipErrors bool
	// Logger overrides the indexer's logger for this call
	Logger *slog.Logger
}

// Statistics contains statistics about an index build
type Statistics struct {
	FilesScanned        int
	FilesWithSections   int
	FilesFailed         int
	BlocksFound         int
	SectionsIndexed     int // Distinct references in the final index
	SectionsRejected    int // Documentation blocks whose parsed reference was empty
	DuplicateReferences int // Sections that replaced an earlier one
	Duration            time.Duration
	ErrorMessages       []string
}

// fileResult is the contribution of one file, produced by a worker
type fileResult struct {
	sections []types.Section
	blocks   int
	rejected int
	err      error
}

// New creates an Indexer using the built-in KSS comment and section parsers
func New() *Indexer {
	p := parser.New()
	return NewWithCollaborators(p, p)
}

// NewWithCollaborators creates an Indexer with custom comment extraction and
// section parsing
func NewWithCollaborators(extractor CommentExtractor, sectionParser SectionParser) *Indexer {
	return &Indexer{
		extractor: extractor,
		parser:    sectionParser,
		logger:    slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the default logger and returns the indexer
func (idx *Indexer) WithLogger(logger *slog.Logger) *Indexer {
	if logger != nil {
		idx.logger = logger
	}
	return idx
}

// BuildIndex walks every path recursively and indexes the documentation
// blocks of every regular file found.
//
// Paths are walked in argument order and each directory in lexical order.
// Files may be read concurrently but sections are inserted in that traversal
// order by a single goroutine, so a reference declared more than once always
// resolves to the block found last, on every run.
//
// File errors abort the build unless config.SkipErrors is set.
func (idx *Indexer) BuildIndex(ctx context.Context, paths []string, config *Config) (*Index, *Statistics, error) {
	if config == nil {
		config = &Config{}
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := config.Logger
	if logger == nil {
		logger = idx.logger
	}

	workingDir := config.WorkingDir
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workingDir = wd
	}
	workingDir, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	files, err := idx.discoverFiles(ctx, paths, workingDir, config.SkipErrors, stats)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover files: %w", err)
	}
	stats.FilesScanned = len(files)

	results, err := idx.extractFiles(ctx, files, workingDir, workers, config.SkipErrors)
	if err != nil {
		return nil, nil, err
	}

	index := NewIndex()
	for i, res := range results {
		stats.BlocksFound += res.blocks
		stats.SectionsRejected += res.rejected

		if res.err != nil {
			stats.FilesFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, res.err.Error())
			logger.Warn("skipping unreadable file", "path", files[i], "error", res.err)
			continue
		}

		if len(res.sections) > 0 {
			stats.FilesWithSections++
		}

		for _, section := range res.sections {
			if previous, replaced := index.put(section); replaced {
				stats.DuplicateReferences++
				logger.Debug("style guide reference redefined",
					"reference", section.Reference,
					"previous", filepath.Join(previous.Path, previous.Filename),
					"current", filepath.Join(section.Path, section.Filename))
			}
		}
	}

	stats.SectionsIndexed = index.Len()
	stats.Duration = time.Since(startTime)

	logger.Info("style guide indexed",
		"paths", len(paths),
		"files", stats.FilesScanned,
		"sections", stats.SectionsIndexed,
		"duplicates", stats.DuplicateReferences,
		"failed", stats.FilesFailed,
		"duration_ms", stats.Duration.Milliseconds())

	return index, stats, nil
}

// discoverFiles lists the regular files below every path in traversal order
func (idx *Indexer) discoverFiles(ctx context.Context, paths []string, workingDir string, skipErrors bool, stats *Statistics) ([]string, error) {
	var files []string

	for _, root := range paths {
		root = resolvePath(root, workingDir)

		// WalkDir does not follow a symlinked root. Walk its target and
		// report files under root so section paths keep the given name.
		walkRoot := root
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			walkRoot = resolved
		}

		err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if err != nil {
				if !skipErrors {
					return err
				}
				stats.FilesFailed++
				stats.ErrorMessages = append(stats.ErrorMessages, err.Error())
				return nil
			}

			if d.Type().IsRegular() {
				rel, err := filepath.Rel(walkRoot, path)
				if err != nil {
					return err
				}
				files = append(files, filepath.Join(root, rel))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// extractFiles reads and classifies files concurrently. results[i] belongs
// to files[i]; each worker writes only its own slot.
func (idx *Indexer) extractFiles(ctx context.Context, files []string, workingDir string, workers int, skipErrors bool) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := idx.indexFile(path, workingDir)
			if res.err != nil && !skipErrors {
				return res.err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// indexFile extracts the sections of a single file
func (idx *Indexer) indexFile(path, workingDir string) fileResult {
	blocks, err := idx.extractor.ExtractBlocks(path)
	if err != nil {
		return fileResult{err: fmt.Errorf("%s: %w", path, err)}
	}

	res := fileResult{blocks: len(blocks)}
	if len(blocks) == 0 {
		return res
	}

	dir := RelativeDir(filepath.Dir(path), workingDir)
	base := filepath.Base(path)

	for _, block := range blocks {
		if !parser.IsDocumentationBlock(block) {
			continue
		}

		section := idx.parser.ParseSection(block, dir, base)
		if section.Reference == "" {
			res.rejected++
			continue
		}
		res.sections = append(res.sections, section)
	}

	return res
}
