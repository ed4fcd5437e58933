// Package cmd contains all CLI commands for ytree.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yangdev/ytree/internal/config"
)

var (
	// Version is the current version of ytree
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configPath string

	// cfg is the effective configuration, loaded before any command runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytree",
	Short: "Schema tree renderer for YANG-style module documents",
	Long: `ytree renders parsed schema documents as annotated text trees.

A schema document describes modules with their data nodes, rpcs, actions,
notifications and augmentations. ytree draws each module in the familiar
indented tree notation: one line per node with status, access flags, name,
cardinality, type and feature conditions.

Main capabilities:
  - Render module trees with depth and line-length limits
  - Group augmentations by target and draw rpc and notification sections
  - Index workspace documents so modules resolve by name and revision
  - Re-render automatically when documents change

Examples:
  ytree init                          # Initialize the .ytree directory
  ytree tree --doc schemas.yaml       # Render every module in a document
  ytree tree ietf-system              # Render one module from the index
  ytree tree sys@2024-03-01 --depth 2 # Limit tree depth
  ytree modules                       # List indexed modules

See 'ytree <command> --help' for command-specific options.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .ytree/config.yaml)")
}

// setup loads configuration and configures the logger for the invocation.
func setup() error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return fmt.Errorf("get working directory: %w", werr)
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	return nil
}
