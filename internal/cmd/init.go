package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yangdev/ytree/internal/config"
	"github.com/yangdev/ytree/internal/index"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .ytree directory and workspace index",
	Long: `Initialize the .ytree directory in the current directory.

This writes a default config.yaml and creates the workspace index database.
Run 'ytree index' afterwards to register the workspace's schema documents.

Examples:
  ytree init          # Initialize in current directory`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	ytreeDir := filepath.Join(cwd, config.ConfigDirName)
	configFile := filepath.Join(ytreeDir, config.ConfigFileName)

	if _, err := os.Stat(configFile); err == nil {
		relPath, _ := filepath.Rel(cwd, ytreeDir)
		fmt.Printf("Already initialized at %s\n", relPath)
		return nil
	}

	if _, err := config.SaveDefault(cwd); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	// Create the index database alongside the config.
	idx, err := index.Open(ytreeDir)
	if err != nil {
		return fmt.Errorf("initializing index: %w", err)
	}
	defer idx.Close()

	relPath, _ := filepath.Rel(cwd, ytreeDir)
	fmt.Printf("Initialized ytree workspace at %s\n", relPath)

	return nil
}
