package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"archscope/internal/logging"
	"archscope/internal/mermaid"
)

var (
	diagramSource string
	diagramOutput string
	diagramFormat string
)

// DiagramResponse is the CLI result of markup generation (and, for the
// view commands, rendering).
type DiagramResponse struct {
	Mode       string `json:"mode"`
	MarkupPath string `json:"markupPath"`
	ImagePath  string `json:"imagePath,omitempty"`
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
}

var diagramCmd = &cobra.Command{
	Use:   "diagram MODE",
	Short: "Generate diagram markup from a source tree",
	Long: `Extract the source tree and emit Mermaid diagram markup for its
relationship graph. MODE is class, state, or connections.

Examples:
  archscope diagram class
  archscope diagram connections --source ./my-crate
  archscope diagram state --output diagrams/machine.mermaid`,
	Args: cobra.ExactArgs(1),
	Run:  runDiagram,
}

func init() {
	diagramCmd.Flags().StringVar(&diagramSource, "source", ".", "Source tree to extract")
	diagramCmd.Flags().StringVar(&diagramOutput, "output", "", "Markup output path (default <source>/diagrams/<mode>.mermaid)")
	diagramCmd.Flags().StringVar(&diagramFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(diagramCmd)
}

func runDiagram(cmd *cobra.Command, args []string) {
	mode, err := mermaid.ParseMode(args[0])
	if err != nil {
		exitWithError(err)
	}
	generateDiagram(mode, diagramSource, diagramOutput, diagramFormat)
}

// generateDiagram is the shared generation path behind diagram and its
// mode-specific shorthands.
func generateDiagram(mode mermaid.Mode, source, output, format string) {
	start := time.Now()
	logger := logging.ForCommand(format)

	root := resolveRoot([]string{source})
	cfg := mustLoadConfig(root)

	markup, g, report := buildMarkup(context.Background(), root, cfg, logger, mode)
	path := writeMarkupFile(root, cfg, mode, markup, output)

	if mode == mermaid.ModeConnections {
		g = g.Collapse()
	}
	resp := &DiagramResponse{
		Mode:       string(mode),
		MarkupPath: path,
		Nodes:      len(g.Nodes),
		Edges:      len(g.Edges),
	}

	out, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)

	recordRun(root, logger, "diagram "+string(mode), start, report)
}
