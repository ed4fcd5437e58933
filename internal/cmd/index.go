package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yangdev/ytree/internal/index"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the workspace document index",
	Long: `Scan the workspace for schema documents and bring the index up to
date. Documents whose content is unchanged are skipped; entries for deleted
documents are pruned.

Examples:
  ytree index           # Incremental reindex
  ytree index --clear   # Drop the index and rebuild from scratch`,
	RunE: runIndex,
}

var indexClear bool

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexClear, "clear", false, "Drop all index contents before rebuilding")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ytreeDir, workDir, err := findWorkspace()
	if err != nil {
		return err
	}

	idx, err := index.Open(ytreeDir)
	if err != nil {
		return err
	}
	defer idx.Close()

	if indexClear {
		if err := idx.Clear(); err != nil {
			return err
		}
	}

	stats, err := idx.Rebuild(workDir, cfg.Workspace.Documents)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d documents (%d unchanged, %d pruned)\n",
		stats.Indexed, stats.Skipped, stats.Pruned)
	return nil
}
