package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archscope/internal/diffengine"
	"archscope/internal/logging"
	"archscope/internal/snapshot"
)

var diffFormat string

// DiffResponse is the CLI result of comparing two snapshots.
type DiffResponse struct {
	OldDir string             `json:"oldDir"`
	NewDir string             `json:"newDir"`
	Result *diffengine.Result `json:"result"`
}

var diffCmd = &cobra.Command{
	Use:   "diff DIR1 DIR2",
	Short: "Compare two snapshot directories",
	Long: `Compare two architecture snapshot directories and report added,
removed, and modified types. Identity is the qualified type name, so a
type that moved files without changing shape reports as unchanged.

Examples:
  archscope diff ./before/architecture ./after/architecture
  archscope diff old/ new/ --format json`,
	Args: cobra.ExactArgs(2),
	Run:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) {
	logger := logging.ForCommand(diffFormat)

	store := snapshot.NewStore()
	oldSnap, err := store.Read(args[0])
	if err != nil {
		exitWithError(err)
	}
	newSnap, err := store.Read(args[1])
	if err != nil {
		exitWithError(err)
	}

	resp := &DiffResponse{
		OldDir: args[0],
		NewDir: args[1],
		Result: diffengine.Diff(oldSnap, newSnap),
	}

	output, err := FormatResponse(resp, OutputFormat(diffFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("diff completed", map[string]interface{}{
		"added":    len(resp.Result.Added),
		"removed":  len(resp.Result.Removed),
		"modified": len(resp.Result.Modified),
	})
}
