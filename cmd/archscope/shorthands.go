package main

import (
	"github.com/spf13/cobra"

	"archscope/internal/mermaid"
)

// Mode-specific shorthands for the diagram command, mirroring the
// historical one-command-per-diagram workflow.

var (
	shorthandSource string
	shorthandOutput string
	shorthandFormat string
)

var classDiagramCmd = &cobra.Command{
	Use:   "class-diagram",
	Short: "Generate the class diagram (shorthand for diagram class)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		generateDiagram(mermaid.ModeClass, shorthandSource, shorthandOutput, shorthandFormat)
	},
}

var stateDiagramCmd = &cobra.Command{
	Use:   "state-diagram",
	Short: "Generate the state-transition diagram (shorthand for diagram state)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		generateDiagram(mermaid.ModeState, shorthandSource, shorthandOutput, shorthandFormat)
	},
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Generate the abbreviated connections view (shorthand for diagram connections)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		generateDiagram(mermaid.ModeConnections, shorthandSource, shorthandOutput, shorthandFormat)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{classDiagramCmd, stateDiagramCmd, connectionsCmd} {
		cmd.Flags().StringVar(&shorthandSource, "source", ".", "Source tree to extract")
		cmd.Flags().StringVar(&shorthandOutput, "output", "", "Markup output path")
		cmd.Flags().StringVar(&shorthandFormat, "format", "human", "Output format (json, human)")
		rootCmd.AddCommand(cmd)
	}
}
