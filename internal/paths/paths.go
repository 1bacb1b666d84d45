// Package paths provides canonical path handling for archscope.
// Snapshot identity depends on repo-relative forward-slash paths, so
// every path that ends up in a snapshot goes through this package.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// CanonicalizePath converts an absolute path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to the analyzed root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = root
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinRoot checks if a path is within the analyzed root
func IsWithinRoot(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(canonical, "..")
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// ArchscopeDir returns the tool's data directory under the analyzed
// root, creating it if necessary.
func ArchscopeDir(root string) (string, error) {
	dir := filepath.Join(root, ".archscope")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// HistoryDBPath returns the path of the run-history database.
func HistoryDBPath(root string) (string, error) {
	dir, err := ArchscopeDir(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archscope.db"), nil
}

// SnapshotFileName converts a canonical source path into the flat file
// name its snapshot document is stored under. Path separators become
// double underscores so the mapping is reversible.
func SnapshotFileName(canonicalPath string) string {
	return strings.ReplaceAll(canonicalPath, "/", "__") + ".arch.yaml"
}

// SourcePathFromSnapshotFile is the inverse of SnapshotFileName.
// Returns false if the file name is not a snapshot document.
func SourcePathFromSnapshotFile(fileName string) (string, bool) {
	const suffix = ".arch.yaml"
	if !strings.HasSuffix(fileName, suffix) {
		return "", false
	}
	trimmed := strings.TrimSuffix(fileName, suffix)
	return strings.ReplaceAll(trimmed, "__", "/"), true
}
