package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archscope/internal/mermaid"
)

var lintCheck bool

var lintCmd = &cobra.Command{
	Use:   "lint FILE",
	Short: "Normalize a Mermaid markup file",
	Long: `Reformat a Mermaid markup file: consistent indentation, class-style
assignments gathered at the end, blank-line noise removed. With --check
the file is left untouched and the exit code reports whether it is
already normalized.

Examples:
  archscope lint diagrams/class.mermaid
  archscope lint diagrams/class.mermaid --check`,
	Args: cobra.ExactArgs(1),
	Run:  runLint,
}

func init() {
	lintCmd.Flags().BoolVar(&lintCheck, "check", false, "Report instead of rewriting")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) {
	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		exitWithError(err)
	}

	formatted, err := mermaid.Format(string(raw))
	if err != nil {
		exitWithError(err)
	}

	if string(raw) == formatted {
		fmt.Printf("%s is already formatted\n", path)
		return
	}

	if lintCheck {
		fmt.Printf("%s needs formatting\n", path)
		os.Exit(1)
	}

	if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
		exitWithError(err)
	}
	fmt.Printf("formatted %s\n", path)
}
