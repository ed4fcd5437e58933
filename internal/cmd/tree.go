package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yangdev/ytree/internal/config"
	"github.com/yangdev/ytree/internal/index"
	"github.com/yangdev/ytree/internal/schema"
	"github.com/yangdev/ytree/internal/tree"
	"github.com/yangdev/ytree/internal/watch"
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree [module[@revision]...]",
	Short: "Render module schema trees",
	Long: `Render modules from schema documents as annotated text trees.

Modules are named by bare name or name@revision. Without arguments every
module in the loaded documents is rendered. Documents come from the --doc
flag, or from the workspace index when no --doc is given.

Examples:
  ytree tree --doc schemas.yaml            # All modules in one document
  ytree tree ietf-system                   # One module, any revision
  ytree tree sys@2024-03-01 net            # Several modules
  ytree tree sys --depth 2 --line-length 72
  ytree tree sys --watch                   # Re-render on document changes
  ytree tree --help-symbols                # Explain the tree notation`,
	RunE: runTree,
}

var (
	treeDocs             []string
	treeDepth            int
	treeLineLength       int
	treePrefixModule     bool
	treePrefixMainModule bool
	treeHelpSymbols      bool
	treeWatch            bool
)

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringArrayVar(&treeDocs, "doc", nil, "Schema document to load (repeatable)")
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum tree depth, 0 for unlimited")
	treeCmd.Flags().IntVar(&treeLineLength, "line-length", 0, "Maximum line length, 0 for unlimited")
	treeCmd.Flags().BoolVar(&treePrefixModule, "prefix-module", false, "Prefix node names with the module name")
	treeCmd.Flags().BoolVar(&treePrefixMainModule, "prefix-main-module", false, "Prefix the rendered module's own nodes too")
	treeCmd.Flags().BoolVar(&treeHelpSymbols, "help-symbols", false, "Print the tree notation legend and exit")
	treeCmd.Flags().BoolVar(&treeWatch, "watch", false, "Re-render whenever a loaded document changes")
}

func runTree(cmd *cobra.Command, args []string) error {
	if treeHelpSymbols {
		fmt.Print(tree.Help())
		return nil
	}

	requests, err := parseModuleArgs(args)
	if err != nil {
		return err
	}

	docs, err := resolveDocuments(requests)
	if err != nil {
		return err
	}

	opts := treeOptions(cmd)

	if !treeWatch {
		return renderDocuments(os.Stdout, docs, requests, opts)
	}

	// Watch mode: render once, then again after each document change.
	if err := renderDocuments(os.Stdout, docs, requests, opts); err != nil {
		log.Error().Err(err).Msg("initial render failed")
	}

	debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
	w, err := watch.New(docs, debounce, log.Logger, func() {
		fmt.Println()
		if err := renderDocuments(os.Stdout, docs, requests, opts); err != nil {
			log.Error().Err(err).Msg("render failed")
		}
	})
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}

// moduleRequest is one module[@revision] argument.
type moduleRequest struct {
	Name     string
	Revision string
}

func parseModuleArgs(args []string) ([]moduleRequest, error) {
	var requests []moduleRequest
	for _, arg := range args {
		name, revision, _ := strings.Cut(arg, "@")
		if name == "" {
			return nil, fmt.Errorf("bad module argument %q", arg)
		}
		if strings.Contains(revision, "@") {
			return nil, fmt.Errorf("bad module argument %q", arg)
		}
		requests = append(requests, moduleRequest{Name: name, Revision: revision})
	}
	return requests, nil
}

// resolveDocuments decides which documents to load: the --doc flags when
// given, otherwise the workspace index.
func resolveDocuments(requests []moduleRequest) ([]string, error) {
	if len(treeDocs) > 0 {
		return treeDocs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	ytreeDir, err := config.FindConfigDir(cwd)
	if err != nil {
		return nil, fmt.Errorf("no --doc given and no %s directory found (run 'ytree init')", config.ConfigDirName)
	}

	idx, err := index.Open(ytreeDir)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	// Keep the index current before resolving against it.
	workDir := filepath.Dir(ytreeDir)
	if _, err := idx.Rebuild(workDir, cfg.Workspace.Documents); err != nil {
		return nil, err
	}

	if len(requests) == 0 {
		entries, err := idx.Documents()
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("no schema documents indexed in %s", workDir)
		}
		docs := make([]string, 0, len(entries))
		for _, e := range entries {
			docs = append(docs, e.DocPath)
		}
		return docs, nil
	}

	// Load the documents defining the requested modules, plus every other
	// indexed document so cross-module augmentations still resolve.
	seen := map[string]bool{}
	var docs []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			docs = append(docs, path)
		}
	}
	for _, req := range requests {
		records, err := idx.Lookup(req.Name, req.Revision)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			add(r.DocPath)
		}
	}
	entries, err := idx.Documents()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		add(e.DocPath)
	}
	return docs, nil
}

// treeOptions builds render options from flags, falling back to config for
// flags the user did not set.
func treeOptions(cmd *cobra.Command) tree.Options {
	opts := tree.Options{
		Depth:            cfg.Tree.Depth,
		LineLength:       cfg.Tree.LineLength,
		PrefixModuleName: cfg.Tree.PrefixModule || treePrefixModule,
		PrefixMainModule: cfg.Tree.PrefixMainModule || treePrefixMainModule,
	}
	if cmd.Flags().Changed("depth") {
		opts.Depth = treeDepth
	}
	if cmd.Flags().Changed("line-length") {
		opts.LineLength = treeLineLength
	}
	return opts
}

// renderDocuments loads the documents and renders the requested modules, or
// every module when no requests are given. A module that fails to render is
// reported and skipped so the remaining modules still print.
func renderDocuments(w io.Writer, docs []string, requests []moduleRequest, opts tree.Options) error {
	sctx, err := schema.LoadDocuments(docs)
	if err != nil {
		return err
	}

	if len(requests) == 0 {
		requests = allModules(sctx)
	}

	var failed int
	for i, req := range requests {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := tree.Write(w, sctx, req.Name, req.Revision, opts); err != nil {
			failed++
			log.Error().Err(err).Str("module", req.Name).Msg("render failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d modules failed to render", failed, len(requests))
	}
	return nil
}

// allModules lists every module in the context, deduplicated and in a
// stable order.
func allModules(sctx *schema.Context) []moduleRequest {
	var requests []moduleRequest
	seen := map[moduleRequest]bool{}
	for _, m := range sctx.Modules {
		req := moduleRequest{Name: m.Name, Revision: m.Revision}
		if !seen[req] {
			seen[req] = true
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].Name != requests[j].Name {
			return requests[i].Name < requests[j].Name
		}
		return requests[i].Revision < requests[j].Revision
	})
	return requests
}
