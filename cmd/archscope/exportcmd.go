package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"archscope/internal/export"
)

var (
	exportOutput string
	exportUnpack string
	exportDest   string
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Pack a snapshot directory into a portable archive",
	Long: `Pack the snapshot directory of a source tree into a single tar+zstd
archive, or unpack such an archive with --unpack.

Examples:
  archscope export
  archscope export ./my-crate --output /tmp/my-crate.tar.zst
  archscope export --unpack /tmp/my-crate.tar.zst --dest ./restored`,
	Args: cobra.MaximumNArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "Archive path (default <dir>/archscope-snapshot.tar.zst)")
	exportCmd.Flags().StringVar(&exportUnpack, "unpack", "", "Unpack the given archive instead of packing")
	exportCmd.Flags().StringVar(&exportDest, "dest", ".", "Destination directory for --unpack")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	if exportUnpack != "" {
		if err := export.Unarchive(exportUnpack, exportDest); err != nil {
			exitWithError(err)
		}
		fmt.Printf("unpacked %s into %s\n", exportUnpack, exportDest)
		return
	}

	root := resolveRoot(args)
	cfg := mustLoadConfig(root)
	snapshotDir := filepath.Join(root, cfg.Output.SnapshotDir)

	out := exportOutput
	if out == "" {
		out = filepath.Join(root, "archscope-snapshot"+export.ArchiveExtension)
	}
	if err := export.Archive(snapshotDir, out); err != nil {
		exitWithError(err)
	}
	fmt.Printf("exported %s to %s\n", snapshotDir, out)
}
