package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/kss-mcp/pkg/types"
)

// writeFile creates root/rel with content, creating directories as needed
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// kssBlock renders a "//" documentation comment
func kssBlock(title, reference string) string {
	return "// " + title + "\n//\n// Styleguide " + reference + "\n.x { }\n"
}

func TestBuildIndex_SingleFile(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "stylesheets/buttons.scss", `// Buttons
//
// Use buttons for actions.
//
// .primary - The main action.
//
// Styleguide 1.1
.btn { }
`)

	index, stats, err := New().BuildIndex(context.Background(), []string{"stylesheets"}, &Config{WorkingDir: wd})
	require.NoError(t, err)

	assert.Equal(t, 1, index.Len())
	section := index.Lookup("1.1")
	assert.Equal(t, "Buttons", section.Title)
	assert.Equal(t, "Use buttons for actions.", section.Description)
	assert.Equal(t, "buttons.scss", section.Filename)
	assert.Equal(t, filepath.FromSlash("/stylesheets"), section.Path)
	require.Len(t, section.Modifiers, 1)

	assert.Equal(t, 1, stats.FilesScanned)
	assert.Equal(t, 1, stats.FilesWithSections)
	assert.Equal(t, 1, stats.BlocksFound)
	assert.Equal(t, 1, stats.SectionsIndexed)
	assert.Zero(t, stats.FilesFailed)
}

func TestBuildIndex_DuplicateReferenceLastWins(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/a.scss", kssBlock("From A", "1.1"))
	writeFile(t, wd, "css/b.scss", kssBlock("From B", "1.1"))

	for run := 0; run < 5; run++ {
		index, stats, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
		require.NoError(t, err)

		assert.Equal(t, 1, index.Len())
		assert.Equal(t, "From B", index.Lookup("1.1").Title, "run %d", run)
		assert.Equal(t, "b.scss", index.Lookup("1.1").Filename)
		assert.Equal(t, 1, stats.DuplicateReferences)
	}
}

func TestBuildIndex_DuplicateWithinFile(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/a.scss", kssBlock("First", "2")+"\n"+kssBlock("Second", "2"))

	index, stats, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
	require.NoError(t, err)

	assert.Equal(t, "Second", index.Lookup("2").Title)
	assert.Equal(t, 1, stats.DuplicateReferences)
}

func TestBuildIndex_TraversalOrderIsLexical(t *testing.T) {
	wd := t.TempDir()
	// "sub" sorts before "z.scss", so the nested file is visited first
	writeFile(t, wd, "css/z.scss", kssBlock("Top level", "3"))
	writeFile(t, wd, "css/sub/a.scss", kssBlock("Nested", "3"))

	index, _, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
	require.NoError(t, err)
	assert.Equal(t, "Top level", index.Lookup("3").Title)
}

func TestBuildIndex_ArgumentOrderDecidesDuplicates(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "one/a.css", kssBlock("One", "5"))
	writeFile(t, wd, "two/a.css", kssBlock("Two", "5"))

	index, _, err := New().BuildIndex(context.Background(), []string{"one", "two"}, &Config{WorkingDir: wd})
	require.NoError(t, err)
	assert.Equal(t, "Two", index.Lookup("5").Title)

	index, _, err = New().BuildIndex(context.Background(), []string{"two", "one"}, &Config{WorkingDir: wd})
	require.NoError(t, err)
	assert.Equal(t, "One", index.Lookup("5").Title)
}

func TestBuildIndex_NoPaths(t *testing.T) {
	index, stats, err := New().BuildIndex(context.Background(), nil, &Config{WorkingDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 0, index.Len())
	assert.Empty(t, index.References())
	assert.Equal(t, 0, stats.FilesScanned)
}

func TestBuildIndex_FilesWithoutDocumentation(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/plain.css", ".a { color: red; }\n")
	writeFile(t, wd, "css/notes.scss", "// Just a note.\n//\n// See Styleguide for details\n.b { }\n")

	index, stats, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
	require.NoError(t, err)

	assert.Equal(t, 0, index.Len())
	assert.Equal(t, 2, stats.FilesScanned)
	assert.Equal(t, 1, stats.BlocksFound)
	assert.Equal(t, 0, stats.FilesWithSections)
}

func TestBuildIndex_AnyExtension(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/README", kssBlock("Readme", "8"))
	writeFile(t, wd, "css/theme.less", kssBlock("Less", "9"))

	index, _, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
	require.NoError(t, err)
	assert.Equal(t, []string{"8", "9"}, index.References())
}

func TestBuildIndex_Idempotent(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/a.scss", kssBlock("A", "1")+"\n"+kssBlock("A child", "1.1"))
	writeFile(t, wd, "css/forms/b.scss", kssBlock("B", "2"))
	writeFile(t, wd, "css/forms/c.scss", kssBlock("C", "2"))

	first, _, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
	require.NoError(t, err)
	second, _, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Sections(), second.Sections())
}

func TestBuildIndex_WorkerCountDoesNotChangeResult(t *testing.T) {
	wd := t.TempDir()
	for i := 0; i < 30; i++ {
		name := filepath.Join("css", string(rune('a'+i%26))+strings.Repeat("x", i/26)+".scss")
		writeFile(t, wd, name, kssBlock(name, "7"))
	}

	serial, _, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd, Workers: 1})
	require.NoError(t, err)
	parallel, _, err := New().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd, Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
	assert.Equal(t, filepath.Join("css", "z.scss"), serial.Lookup("7").Title)
}

func TestBuildIndex_WorkingDirectory(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/deep/forms.scss", kssBlock("Forms", "4"))

	t.Run("absolute input path", func(t *testing.T) {
		index, _, err := New().BuildIndex(context.Background(), []string{filepath.Join(wd, "css")}, &Config{WorkingDir: wd})
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/css/deep"), index.Lookup("4").Path)
	})

	t.Run("working directory differs from input path", func(t *testing.T) {
		index, _, err := New().BuildIndex(context.Background(), []string{"deep"}, &Config{WorkingDir: filepath.Join(wd, "css")})
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/deep"), index.Lookup("4").Path)
	})

	t.Run("file directly in working directory", func(t *testing.T) {
		index, _, err := New().BuildIndex(context.Background(), []string{"."}, &Config{WorkingDir: filepath.Join(wd, "css", "deep")})
		require.NoError(t, err)
		assert.Equal(t, "", index.Lookup("4").Path)
	})

	t.Run("defaults to process working directory", func(t *testing.T) {
		t.Chdir(wd)
		index, _, err := New().BuildIndex(context.Background(), []string{"css"}, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/css/deep"), index.Lookup("4").Path)
	})
}

func TestBuildIndex_MissingPath(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/a.scss", kssBlock("A", "1"))

	t.Run("fails by default", func(t *testing.T) {
		_, _, err := New().BuildIndex(context.Background(), []string{"missing", "css"}, &Config{WorkingDir: wd})
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("skipped on request", func(t *testing.T) {
		index, stats, err := New().BuildIndex(context.Background(), []string{"missing", "css"}, &Config{WorkingDir: wd, SkipErrors: true})
		require.NoError(t, err)
		assert.Equal(t, 1, index.Len())
		assert.Equal(t, 1, stats.FilesFailed)
		assert.Len(t, stats.ErrorMessages, 1)
	})
}

func TestBuildIndex_SymlinkedRoot(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "real/a.scss", kssBlock("A", "1.1"))
	writeFile(t, wd, "real/forms/b.scss", kssBlock("B", "2"))
	if err := os.Symlink(filepath.Join(wd, "real"), filepath.Join(wd, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	index, stats, err := New().BuildIndex(context.Background(), []string{"link"}, &Config{WorkingDir: wd})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesScanned)
	assert.Equal(t, 2, index.Len())
	assert.Equal(t, filepath.FromSlash("/link"), index.Lookup("1.1").Path)
	assert.Equal(t, filepath.FromSlash("/link/forms"), index.Lookup("2").Path)
}

// stubExtractor serves blocks by file base name
type stubExtractor struct {
	blocks map[string][]string
	fail   map[string]error
}

func (s *stubExtractor) ExtractBlocks(path string) ([]string, error) {
	base := filepath.Base(path)
	if err, ok := s.fail[base]; ok {
		return nil, err
	}
	return s.blocks[base], nil
}

// recordingParser records its calls and delegates to parse
type recordingParser struct {
	mu    sync.Mutex
	calls [][3]string
	parse func(block, dir, base string) types.Section
}

func (r *recordingParser) ParseSection(block, dir, base string) types.Section {
	r.mu.Lock()
	r.calls = append(r.calls, [3]string{block, dir, base})
	r.mu.Unlock()
	return r.parse(block, dir, base)
}

func TestBuildIndex_CustomCollaborators(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/a.css", "")
	writeFile(t, wd, "css/b.css", "")

	extractor := &stubExtractor{blocks: map[string][]string{
		"a.css": {"Not documentation", "Alpha\n\nStyleguide 1"},
		"b.css": {"Beta\n\nStyleguide 2"},
	}}
	rec := &recordingParser{parse: func(block, dir, base string) types.Section {
		return types.Section{Reference: strings.TrimPrefix(lastLine(block), "Styleguide "), Path: dir, Filename: base}
	}}

	index, stats, err := NewWithCollaborators(extractor, rec).BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, index.References())
	assert.Equal(t, 3, stats.BlocksFound)

	// Only classified blocks reach the parser
	require.Len(t, rec.calls, 2)
	for _, call := range rec.calls {
		assert.Equal(t, filepath.FromSlash("/css"), call[1])
		assert.Contains(t, []string{"a.css", "b.css"}, call[2])
	}
}

func TestBuildIndex_RejectsBlankReferences(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/a.css", "")

	extractor := &stubExtractor{blocks: map[string][]string{"a.css": {"Alpha\n\nStyleguide 1"}}}
	rec := &recordingParser{parse: func(string, string, string) types.Section { return types.Section{} }}

	index, stats, err := NewWithCollaborators(extractor, rec).BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
	require.NoError(t, err)

	assert.Equal(t, 0, index.Len())
	assert.False(t, index.Has(""))
	assert.Equal(t, 1, stats.SectionsRejected)
}

func TestBuildIndex_ExtractionErrors(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/bad.css", "")
	writeFile(t, wd, "css/good.css", "")

	errBroken := errors.New("broken comment")
	newIndexer := func() *Indexer {
		extractor := &stubExtractor{
			blocks: map[string][]string{"good.css": {"Good\n\nStyleguide 1"}},
			fail:   map[string]error{"bad.css": errBroken},
		}
		return NewWithCollaborators(extractor, &recordingParser{parse: func(block, dir, base string) types.Section {
			return types.Section{Reference: "1", Filename: base}
		}})
	}

	t.Run("surfaced by default", func(t *testing.T) {
		_, _, err := newIndexer().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd})
		require.Error(t, err)
		assert.ErrorIs(t, err, errBroken)
		assert.Contains(t, err.Error(), "bad.css")
	})

	t.Run("skipped on request", func(t *testing.T) {
		index, stats, err := newIndexer().BuildIndex(context.Background(), []string{"css"}, &Config{WorkingDir: wd, SkipErrors: true})
		require.NoError(t, err)
		assert.Equal(t, "good.css", index.Lookup("1").Filename)
		assert.Equal(t, 1, stats.FilesFailed)
		require.Len(t, stats.ErrorMessages, 1)
		assert.Contains(t, stats.ErrorMessages[0], "bad.css")
	})
}

func TestBuildIndex_CancelledContext(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, wd, "css/a.scss", kssBlock("A", "1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New().BuildIndex(ctx, []string{"css"}, &Config{WorkingDir: wd})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// lastLine returns the final line of block
func lastLine(block string) string {
	lines := strings.Split(block, "\n")
	return lines[len(lines)-1]
}
