package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yangdev/ytree/internal/config"
	"github.com/yangdev/ytree/internal/index"
)

// modulesCmd represents the modules command
var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List modules known to the workspace index",
	Long: `List every module registered in the workspace index, with its
revision, namespace and the document that defines it.

The index is refreshed before listing, so the output reflects the current
state of the workspace documents.

Examples:
  ytree modules`,
	RunE: runModules,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}

func runModules(cmd *cobra.Command, args []string) error {
	ytreeDir, workDir, err := findWorkspace()
	if err != nil {
		return err
	}

	idx, err := index.Open(ytreeDir)
	if err != nil {
		return err
	}
	defer idx.Close()

	if _, err := idx.Rebuild(workDir, cfg.Workspace.Documents); err != nil {
		return err
	}

	records, err := idx.Modules()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No modules indexed. Check the workspace.documents patterns in config.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tREVISION\tNAMESPACE\tDOCUMENT")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Revision, r.Namespace, r.DocPath)
	}
	return w.Flush()
}

// findWorkspace locates the .ytree directory and its parent workspace.
func findWorkspace() (ytreeDir, workDir string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("get working directory: %w", err)
	}
	ytreeDir, err = config.FindConfigDir(cwd)
	if err != nil {
		return "", "", fmt.Errorf("no %s directory found (run 'ytree init')", config.ConfigDirName)
	}
	return ytreeDir, filepath.Dir(ytreeDir), nil
}
