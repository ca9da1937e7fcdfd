package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_MixedComments(t *testing.T) {
	src := `// Buttons
//
// Styleguide 1
.btn { color: red; }

/*
 * Links
 *
 * :hover - Underlined.
 *
 * Styleguide 2.1.
 */
a { }
/* single line */
  // indented
  //   more
`

	blocks, err := NewCommentExtractor().Extract(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Buttons\n\nStyleguide 1",
		"Links\n\n:hover - Underlined.\n\nStyleguide 2.1.",
		"single line",
		"indented\n  more",
	}, blocks)
}

func TestExtract_SingleLineRuns(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"rule ends run", "// a\n.x {}\n// b\n", []string{"a", "b"}},
		{"blank line ends run", "// a\n\n// b\n", []string{"a", "b"}},
		{"empty comment lines kept inside", "// a\n//\n// b\n", []string{"a\n\nb"}},
		{"only empty comments", "//\n//\n", nil},
		{"no comments", ".x { color: blue; }\n", nil},
		{"trailing comment ignored", ".x { color: blue; } // note\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := NewCommentExtractor().Extract(strings.NewReader(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, blocks)
		})
	}
}

func TestExtract_MultiLineVariants(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"doc comment opener", "/** doc */\n", []string{"doc"}},
		{"no gutter", "/*\n  Title\n\n  Styleguide 3\n*/\n", []string{"Title\n\nStyleguide 3"}},
		{"unterminated", "/* open\n still\n", []string{"open\nstill"}},
		{"empty", "/* */\n", nil},
		{"windows line endings", "/*\r\n * a\r\n */\r\n", []string{"a"}},
		{"two on one line", "/* a */ /* b */\n", []string{"a", "b"}},
		{"closing line opens another", "/*\n a\n*/ /* b */\n", []string{"a", "b"}},
		{"line comment after close", "/* a */ // b\n// c\n", []string{"a", "b\nc"}},
		{"declaration after close", "/* a */ .x { } /* b */\n", []string{"a"}},
		{"empty doc opener", "/**/\n.x { }\n// c\n", []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := NewCommentExtractor().Extract(strings.NewReader(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, blocks)
		})
	}
}

func TestExtractBlocks_File(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "buttons.scss")
	require.NoError(t, os.WriteFile(path, []byte("// Buttons\n//\n// Styleguide 1\n"), 0644))

	blocks, err := NewCommentExtractor().ExtractBlocks(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Buttons\n\nStyleguide 1"}, blocks)
}

func TestExtractBlocks_MissingFile(t *testing.T) {
	_, err := NewCommentExtractor().ExtractBlocks(filepath.Join(t.TempDir(), "missing.css"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
