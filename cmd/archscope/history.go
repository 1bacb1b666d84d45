package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archscope/internal/logging"
	"archscope/internal/paths"
	"archscope/internal/storage"
)

var (
	historyLimit  int
	historyFormat string
)

// HistoryResponse lists recent recorded runs.
type HistoryResponse struct {
	Runs []storage.Run `json:"runs"`
}

var historyCmd = &cobra.Command{
	Use:   "history [dir]",
	Short: "List recent archscope runs for a source tree",
	Args:  cobra.MaximumNArgs(1),
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	logger := logging.ForCommand(historyFormat)
	root := resolveRoot(args)

	dbPath, err := paths.HistoryDBPath(root)
	if err != nil {
		exitWithError(err)
	}
	h, err := storage.OpenHistory(dbPath, logger)
	if err != nil {
		exitWithError(err)
	}
	defer h.Close()

	runs, err := h.ListRuns(historyLimit)
	if err != nil {
		exitWithError(err)
	}

	out, err := FormatResponse(&HistoryResponse{Runs: runs}, OutputFormat(historyFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
