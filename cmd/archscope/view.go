package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"archscope/internal/logging"
	"archscope/internal/mermaid"
	"archscope/internal/render"
)

var (
	viewSource      string
	viewImageFormat string
	viewFormat      string
)

var viewCmd = &cobra.Command{
	Use:   "view MODE",
	Short: "Generate diagram markup and render it to an image",
	Long: `Generate Mermaid markup for MODE (class, state, or connections) and
render it to an image with mermaid-cli (mmdc). The markup lands in the
diagrams directory, the image in the visuals directory.

Examples:
  archscope view class
  archscope view connections --image-format png`,
	Args: cobra.ExactArgs(1),
	Run:  runView,
}

var viewClassDiagramCmd = &cobra.Command{
	Use:   "view-class-diagram",
	Short: "Generate and render the class diagram (shorthand for view class)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		viewDiagram(mermaid.ModeClass)
	},
}

var viewConnectionsCmd = &cobra.Command{
	Use:   "view-connections",
	Short: "Generate and render the connections view (shorthand for view connections)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		viewDiagram(mermaid.ModeConnections)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{viewCmd, viewClassDiagramCmd, viewConnectionsCmd} {
		cmd.Flags().StringVar(&viewSource, "source", ".", "Source tree to extract")
		cmd.Flags().StringVar(&viewImageFormat, "image-format", "svg", "Image format (svg, png, pdf)")
		cmd.Flags().StringVar(&viewFormat, "format", "human", "Output format (json, human)")
		rootCmd.AddCommand(cmd)
	}
}

func runView(cmd *cobra.Command, args []string) {
	mode, err := mermaid.ParseMode(args[0])
	if err != nil {
		exitWithError(err)
	}
	viewDiagram(mode)
}

func viewDiagram(mode mermaid.Mode) {
	start := time.Now()
	logger := logging.ForCommand(viewFormat)
	ctx := context.Background()

	root := resolveRoot([]string{viewSource})
	cfg := mustLoadConfig(root)

	markup, g, report := buildMarkup(ctx, root, cfg, logger, mode)
	markupPath := writeMarkupFile(root, cfg, mode, markup, "")

	// Class diagrams get their own init block; other modes use the
	// plain configured theme.
	toRender := markup
	if mode == mermaid.ModeClass && cfg.Mermaid.ClassInit != "" {
		toRender = cfg.Mermaid.ClassInit + "\n" + markup
	}

	backend := render.NewBackend(cfg.Render, cfg.Mermaid.Theme, logger)
	imagePath := render.OutputPath(filepath.Join(root, cfg.Output.VisualsDir), markupPath, viewImageFormat)
	if err := backend.Render(ctx, toRender, imagePath, viewImageFormat); err != nil {
		exitWithError(err)
	}

	if mode == mermaid.ModeConnections {
		g = g.Collapse()
	}
	resp := &DiagramResponse{
		Mode:       string(mode),
		MarkupPath: markupPath,
		ImagePath:  imagePath,
		Nodes:      len(g.Nodes),
		Edges:      len(g.Edges),
	}

	out, err := FormatResponse(resp, OutputFormat(viewFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)

	recordRun(root, logger, "view "+string(mode), start, report)
}
