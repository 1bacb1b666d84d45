// Package project detects crate metadata for an analyzed source tree.
// The crate name anchors every qualified type name, so it has to be
// stable across runs: Cargo.toml wins, the directory name is the
// fallback.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the cargo manifest filename
const ManifestFile = "Cargo.toml"

// Manifest represents the subset of Cargo.toml archscope cares about
type Manifest struct {
	Package   PackageSection `toml:"package"`
	Workspace *Workspace     `toml:"workspace,omitempty"`
}

// PackageSection is the [package] table
type PackageSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version,omitempty"`
	Edition string `toml:"edition,omitempty"`
}

// Workspace is the [workspace] table; its presence marks a workspace root
type Workspace struct {
	Members []string `toml:"members,omitempty"`
}

// ParseManifest parses a Cargo.toml file from the given path
func ParseManifest(filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}

	var manifest Manifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}

	return &manifest, nil
}

// CrateName determines the crate name for a source root. When the root
// carries a Cargo.toml with a package name it wins; otherwise the base
// name of the root directory is used, normalized the way cargo does
// (dashes become underscores).
func CrateName(root string) string {
	manifestPath := filepath.Join(root, ManifestFile)
	if manifest, err := ParseManifest(manifestPath); err == nil && manifest.Package.Name != "" {
		return normalizeCrateName(manifest.Package.Name)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return normalizeCrateName(filepath.Base(abs))
}

// IsWorkspaceRoot reports whether the directory's Cargo.toml declares a
// [workspace] table.
func IsWorkspaceRoot(dir string) bool {
	manifest, err := ParseManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return false
	}
	return manifest.Workspace != nil
}

func normalizeCrateName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}
