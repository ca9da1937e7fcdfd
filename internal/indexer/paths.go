package indexer

import (
	"path/filepath"
	"strings"
)

// RelativeDir strips workingDir from the front of dir. The leading separator
// is kept, so "/site/css/forms" under "/site" becomes "/css/forms", and dir
// equal to workingDir becomes "". Directories outside workingDir, or a match
// that does not end on a path boundary, are returned unchanged.
func RelativeDir(dir, workingDir string) string {
	dir = filepath.Clean(dir)
	if workingDir == "" {
		return dir
	}

	wd := filepath.Clean(workingDir)
	if dir == wd {
		return ""
	}

	prefix := wd
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if strings.HasPrefix(dir, prefix) {
		return string(filepath.Separator) + dir[len(prefix):]
	}

	return dir
}

// resolvePath makes path absolute against workingDir
func resolvePath(path, workingDir string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(workingDir, path)
}
