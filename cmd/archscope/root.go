package main

import (
	"archscope/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "archscope",
	Short: "archscope - structural architecture snapshots for Rust crates",
	Long: `archscope extracts the structural architecture of a Rust source tree
(types, impl blocks, imports, call sites), persists it as a deterministic
plain-text snapshot, diffs snapshots against each other, and derives
relationship diagrams (class, state, connections) in Mermaid markup.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("archscope version {{.Version}}\n")
}
