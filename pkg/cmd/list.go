package cmd

import (
	"fmt"

	"github.com/agentsync/agentsync/pkg/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list [source-url]",
		Short: "List available assets without copying",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runList,
	}

	listCmd.Flags().String("class", classAgents, `asset class to list ("agents" or "pipelines")`)

	return listCmd
}

func runList(cmd *cobra.Command, args []string) error {
	class, err := cmd.Flags().GetString("class")
	if err != nil {
		return err
	}
	if _, ok := classDest[class]; !ok {
		return fmt.Errorf("unknown asset class %q", class)
	}

	var argSource string
	if len(args) > 0 {
		argSource = args[0]
	}

	cfg, err := config.Load(argSource, "")
	if err != nil {
		return err
	}

	_, entries, err := resolveAndCatalog(cmd, cfg, class)
	if err != nil {
		return err
	}

	printCatalog(cmd.OutOrStdout(), entries)
	return nil
}
