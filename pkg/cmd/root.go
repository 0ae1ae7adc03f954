package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "agentsync",
		Short:        "Sync and validate agent assets",
		Long:         "agentsync distributes agent prompt documents and pipeline templates from a canonical source repository into consumer projects, and validates them against the asset schema.",
		SilenceUsage: true,
	}

	root.AddCommand(newSyncCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newValidateCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
