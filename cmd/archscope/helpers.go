package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"archscope/internal/config"
	"archscope/internal/errors"
	"archscope/internal/extract"
	"archscope/internal/graph"
	"archscope/internal/logging"
	"archscope/internal/mermaid"
	"archscope/internal/paths"
	"archscope/internal/project"
	"archscope/internal/snapshot"
	"archscope/internal/storage"
)

// exitWithError prints the error with any suggested fixes and exits.
func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	for _, fix := range errors.GetSuggestedFixes(errors.CodeOf(err)) {
		fmt.Fprintf(os.Stderr, "  fix: %s", fix.Description)
		if fix.Command != "" {
			fmt.Fprintf(os.Stderr, " (%s)", fix.Command)
		}
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(1)
}

// resolveRoot turns an optional positional dir argument into an
// absolute source root.
func resolveRoot(args []string) string {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		exitWithError(err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		exitWithError(fmt.Errorf("source root %s is not a directory", abs))
	}
	return abs
}

func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(err)
	}
	return cfg
}

// extractSnapshot runs the full extraction pipeline for a source root.
func extractSnapshot(ctx context.Context, root string, cfg *config.Config, logger *logging.Logger) (*snapshot.Snapshot, *extract.Report, string) {
	crate := project.CrateName(root)
	snap, report, err := extract.NewWalker(cfg, logger).ExtractTree(ctx, root, crate)
	if err != nil {
		exitWithError(err)
	}
	return snap, report, crate
}

// buildMarkup extracts, builds the graph, and renders one diagram
// mode. Shared by the generate and view command families.
func buildMarkup(ctx context.Context, root string, cfg *config.Config, logger *logging.Logger, mode mermaid.Mode) (string, *graph.Graph, *extract.Report) {
	snap, report, _ := extractSnapshot(ctx, root, cfg, logger)

	g, err := graph.Build(snap)
	if err != nil {
		exitWithError(err)
	}
	markup, err := mermaid.NewRenderer(snap).Render(g, mode)
	if err != nil {
		exitWithError(err)
	}
	return markup, g, report
}

// writeMarkupFile writes markup under the configured diagram dir (or
// an explicit output path) and returns the written path.
func writeMarkupFile(root string, cfg *config.Config, mode mermaid.Mode, markup, override string) string {
	path := override
	if path == "" {
		path = filepath.Join(root, cfg.Output.DiagramDir, string(mode)+".mermaid")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		exitWithError(err)
	}
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		exitWithError(err)
	}
	return path
}

// recordRun appends the run to the local history database.
// Best-effort: history failures are logged, never fatal.
func recordRun(root string, logger *logging.Logger, command string, start time.Time, report *extract.Report) {
	dbPath, err := paths.HistoryDBPath(root)
	if err != nil {
		logger.Warn("history disabled", map[string]interface{}{"error": err.Error()})
		return
	}
	h, err := storage.OpenHistory(dbPath, logger)
	if err != nil {
		logger.Warn("history disabled", map[string]interface{}{"error": err.Error()})
		return
	}
	defer h.Close()

	run := storage.Run{
		Command:    command,
		Root:       root,
		StartedAt:  start.UTC(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	if report != nil {
		run.FilesScanned = report.FilesScanned
		run.TypesFound = report.TypesFound
		run.Skipped = len(report.Skipped)
		run.Duplicates = len(report.Duplicates)
	}
	if _, err := h.RecordRun(run); err != nil {
		logger.Warn("failed to record run", map[string]interface{}{"error": err.Error()})
	}
}
