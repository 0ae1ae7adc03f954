package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agentsync/agentsync/pkg/cache"
	"github.com/agentsync/agentsync/pkg/catalog"
	"github.com/agentsync/agentsync/pkg/config"
	"github.com/agentsync/agentsync/pkg/selection"
	"github.com/agentsync/agentsync/pkg/source"
	"github.com/agentsync/agentsync/pkg/syncer"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// Asset classes. Each maps to a subdirectory of the source repository, a
// discovery mode, and a default destination in the consumer project.
const (
	classAgents    = "agents"
	classPipelines = "pipelines"
)

var classDest = map[string]string{
	classAgents:    ".claude/agents",
	classPipelines: ".github/workflows",
}

func newSyncCmd() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync [source-url]",
		Short: "Copy assets from the source into this project",
		Long: `Resolves the asset source (a git URL or a local path), lists the
available assets, and copies the selected ones into a flat destination
directory. The source may be given as an argument, via the AGENTSYNC_SOURCE
environment variable, or in .agentsync.toml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSync,
	}

	syncCmd.Flags().String("class", classAgents, `asset class to sync ("agents" or "pipelines")`)
	syncCmd.Flags().String("dest", "", "destination directory (default depends on class)")
	syncCmd.Flags().String("select", "", `selection, e.g. "1 3 5-8" or "all" (prompts when omitted)`)
	syncCmd.Flags().Bool("save", false, "write the resolved source to .agentsync.toml")

	return syncCmd
}

func runSync(cmd *cobra.Command, args []string) error {
	class, err := cmd.Flags().GetString("class")
	if err != nil {
		return err
	}
	if _, ok := classDest[class]; !ok {
		return fmt.Errorf("unknown asset class %q", class)
	}

	flagDest, err := cmd.Flags().GetString("dest")
	if err != nil {
		return err
	}
	flagSelect, err := cmd.Flags().GetString("select")
	if err != nil {
		return err
	}
	flagSave, err := cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}

	var argSource string
	if len(args) > 0 {
		argSource = args[0]
	}

	cfg, err := config.Load(argSource, flagDest)
	if err != nil {
		return err
	}

	dest := cfg.Destination
	if dest == "" {
		dest = classDest[class]
	}

	resolved, entries, err := resolveAndCatalog(cmd, cfg, class)
	if err != nil {
		return err
	}

	if resolved.Reused {
		fmt.Fprintf(cmd.OutOrStdout(), "Using existing local copy of %s\n", resolved.URL)
	}

	printCatalog(cmd.OutOrStdout(), entries)

	input := flagSelect
	if input == "" {
		input, err = promptSelection()
		if err != nil {
			return err
		}
	}

	var indices []int
	if strings.TrimSpace(input) == "all" {
		indices = selection.All(len(entries))
	} else {
		indices = selection.Parse(input, len(entries))
	}
	if len(indices) == 0 {
		return fmt.Errorf("nothing selected")
	}

	chosen := make([]catalog.Entry, 0, len(indices))
	for _, i := range indices {
		chosen = append(chosen, entries[i-1])
	}

	sum, results, err := syncer.Sync(resolved.Dir, chosen, dest)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Outcome != syncer.Copied {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to copy %s: %v\n", r.Entry.DisplayName, r.Err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Copied %d asset(s) to %s (%d failed)\n", sum.Copied, sum.Destination, sum.Failed)
	fmt.Fprintf(cmd.OutOrStdout(), "Destination integrity: %s\n", sum.Integrity)

	return maybeSaveConfig(cmd, cfg, argSource, flagSelect == "", flagSave)
}

// resolveAndCatalog materializes the configured source and scans it for
// the given asset class. Shared by sync and list.
func resolveAndCatalog(cmd *cobra.Command, cfg *config.Config, class string) (*source.Resolved, []catalog.Entry, error) {
	src := source.New(cfg.Source, class, cfg.Checkout, cache.Default())

	resolved, err := src.Resolve(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("resolving source: %w", err)
	}

	entries, err := catalog.Scan(resolved.Dir, class == classPipelines, cmd.ErrOrStderr())
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalog) {
			return nil, nil, fmt.Errorf("no %s found under %s", class, resolved.Dir)
		}
		return nil, nil, err
	}

	return resolved, entries, nil
}

func printCatalog(w io.Writer, entries []catalog.Entry) {
	fmt.Fprintf(w, "Available assets (%d):\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %3d. %-40s %s\n", e.Index, e.DisplayName, e.Summary)
	}
}

// promptSelection uses huh to ask for a selection string when --select was
// not given.
func promptSelection() (string, error) {
	var input string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Select assets to sync").
				Description(`Space-separated numbers and ranges (e.g. "1 3 5-8"), or "all"`).
				Value(&input),
		),
	).Run()
	if err != nil {
		return "", fmt.Errorf("selection prompt failed: %w", err)
	}
	return input, nil
}

// maybeSaveConfig persists the source to .agentsync.toml. With --save it
// writes unconditionally; otherwise, when the source was overridden on the
// command line during an interactive run, it asks first.
func maybeSaveConfig(cmd *cobra.Command, cfg *config.Config, argSource string, interactive, save bool) error {
	if !save {
		if !interactive || argSource == "" {
			return nil
		}
		var confirmed bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Save %s as the source for future runs?", cfg.Source)).
					Value(&confirmed),
			),
		).Run()
		if err != nil {
			return fmt.Errorf("save prompt failed: %w", err)
		}
		if !confirmed {
			return nil
		}
	}

	if err := config.WriteLocal(".", cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.LocalConfigFile)
	return nil
}
