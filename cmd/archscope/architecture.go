package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"archscope/internal/extract"
	"archscope/internal/logging"
	"archscope/internal/snapshot"
)

var (
	architectureOutput string
	architectureFormat string
)

// ArchitectureResponse is the CLI result of an extraction run.
type ArchitectureResponse struct {
	CrateName    string                `json:"crateName"`
	Root         string                `json:"root"`
	SnapshotDir  string                `json:"snapshotDir"`
	FilesScanned int                   `json:"filesScanned"`
	TypesFound   int                   `json:"typesFound"`
	Skipped      []extract.SkippedFile `json:"skipped,omitempty"`
	Duplicates   []string              `json:"duplicates,omitempty"`
}

var architectureCmd = &cobra.Command{
	Use:   "architecture [dir]",
	Short: "Extract a source tree into an architecture snapshot",
	Long: `Extract the structural architecture of a Rust source tree and persist
it as a deterministic snapshot directory (one text file per source file).

Examples:
  archscope architecture
  archscope architecture ./my-crate
  archscope architecture ./my-crate --output /tmp/arch`,
	Args: cobra.MaximumNArgs(1),
	Run:  runArchitecture,
}

func init() {
	architectureCmd.Flags().StringVar(&architectureOutput, "output", "", "Snapshot output directory (default <dir>/architecture)")
	architectureCmd.Flags().StringVar(&architectureFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(architectureCmd)
}

func runArchitecture(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := logging.ForCommand(architectureFormat)

	root := resolveRoot(args)
	cfg := mustLoadConfig(root)
	snap, report, crate := extractSnapshot(context.Background(), root, cfg, logger)

	outDir := architectureOutput
	if outDir == "" {
		outDir = filepath.Join(root, cfg.Output.SnapshotDir)
	}
	if err := snapshot.NewStore().Write(snap, outDir); err != nil {
		exitWithError(err)
	}

	resp := &ArchitectureResponse{
		CrateName:    crate,
		Root:         root,
		SnapshotDir:  outDir,
		FilesScanned: report.FilesScanned,
		TypesFound:   report.TypesFound,
		Skipped:      report.Skipped,
	}
	for _, d := range report.Duplicates {
		resp.Duplicates = append(resp.Duplicates, d.String())
	}

	output, err := FormatResponse(resp, OutputFormat(architectureFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	recordRun(root, logger, "architecture", start, report)

	logger.Debug("architecture extraction completed", map[string]interface{}{
		"files":    report.FilesScanned,
		"types":    report.TypesFound,
		"duration": time.Since(start).Milliseconds(),
	})
}
