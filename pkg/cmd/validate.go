package cmd

import (
	"fmt"

	"github.com/agentsync/agentsync/pkg/validate"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check assets against the structural schema",
		Long: `Validates every asset file in a directory against the schema: front
matter delimiters, required fields, naming convention, body substance, and
encoding. Exits non-zero if any check fails; warnings alone do not fail
the run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := classDest[classAgents]
	if len(args) > 0 {
		dir = args[0]
	}

	sum, reports, err := validate.CheckDir(dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rep := range reports {
		for _, r := range rep.Results {
			if r.Outcome == validate.Pass {
				continue
			}
			fmt.Fprintf(out, "%s: [%s] %s: %s\n", rep.File, r.Outcome, r.Rule, r.Detail)
		}
	}

	fmt.Fprintf(out, "Checked %d file(s): %d passed, %d failed, %d warning(s)\n",
		len(reports), sum.Passed, sum.Failed, sum.Warnings)

	if !sum.OK() {
		return fmt.Errorf("validation failed: %d check(s) failed", sum.Failed)
	}
	return nil
}
