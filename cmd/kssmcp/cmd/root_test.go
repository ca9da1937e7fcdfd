package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv isolates a test from the user's config and catalogue
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("KSSMCP_CONFIG", "")
	t.Setenv("KSSMCP_WORKING_DIR", "")
	t.Setenv("KSSMCP_DB_PATH", filepath.Join(dir, "db"))
	t.Setenv("KSSMCP_LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return buf.String(), err
}

func writeStylesheet(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRootCmd_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "kssmcp")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "index")
	assert.Contains(t, out, "get")
}

func TestRootCmd_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)

	assert.Contains(t, out, "Version: "+Version)
	assert.Contains(t, out, "SQLite Driver:")
	assert.Contains(t, out, "Build Mode:")
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, err := execute(t, "stylesheets")
	assert.Error(t, err)
}

func TestIndexAndGet(t *testing.T) {
	dir := setupEnv(t)
	writeStylesheet(t, dir, "stylesheets/buttons.scss", `// Buttons
//
// Your standard button.
//
// :hover - Highlights when hovering.
//
// Styleguide 1.1
.button { }
`)

	out, err := execute(t, "index", "stylesheets", "--name", "site")
	require.NoError(t, err)
	assert.Contains(t, out, `Indexed style guide "site"`)
	assert.Contains(t, out, "Sections indexed:     1")
	assert.FileExists(t, filepath.Join(dir, "db", "kssmcp.db"))

	out, err = execute(t, "get", "1.1", "--name", "site")
	require.NoError(t, err)

	var section sectionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &section))
	assert.True(t, section.Found)
	assert.Equal(t, "Buttons", section.Title)
	assert.Equal(t, "Your standard button.", section.Description)
	assert.Equal(t, "buttons.scss", section.Filename)
	assert.Equal(t, filepath.FromSlash("/stylesheets"), section.Path)
	require.Len(t, section.Modifiers, 1)
	assert.Equal(t, "pseudo-class-hover", section.Modifiers[0].ClassName)
}

func TestGet_UnknownReference(t *testing.T) {
	dir := setupEnv(t)
	writeStylesheet(t, dir, "css/a.css", "/*\nAlerts\n\nStyleguide 3\n*/\n")

	_, err := execute(t, "index", "css")
	require.NoError(t, err)

	out, err := execute(t, "get", "9.9")
	require.NoError(t, err)

	var section sectionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &section))
	assert.False(t, section.Found)
	assert.Empty(t, section.Reference)
	assert.Empty(t, section.Title)
	assert.Empty(t, section.Modifiers)
}

func TestGet_NotIndexed(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "get", "1.1", "--name", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been indexed")
}

func TestIndex_NoPaths(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "index")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no paths")
}

func TestIndex_ConfiguredPaths(t *testing.T) {
	dir := setupEnv(t)
	writeStylesheet(t, dir, "scss/_nav.scss", "// Navigation\n//\n// Styleguide 4\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kss.yaml"), []byte("paths:\n  - scss\n"), 0644))

	out, err := execute(t, "--config", filepath.Join(dir, "kss.yaml"), "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Sections indexed:     1")
}
