package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"archscope/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default .archscope.yaml configuration",
	Args:  cobra.MaximumNArgs(1),
	Run:   runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	root := resolveRoot(args)

	if !initForce && config.FileExists(root) {
		exitWithError(fmt.Errorf("%s already exists (use --force to overwrite)", config.FilePath(root)))
	}
	if err := config.DefaultConfig().Save(root); err != nil {
		exitWithError(err)
	}
	fmt.Printf("wrote %s\n", config.FilePath(root))
}
