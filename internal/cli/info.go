package cli

import (
	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/runtime"
)

// newInfoCmd creates the info command
func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [REV]",
		Short: "Show where and when a changeset landed",
		Long: `Show the provenance of a changeset: its bugs and reviewers, its first
push, every tree it reached and the first release, beta, aurora and nightly
containing it.

Without a revision, counts of the local database are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revision := ""
			if len(args) > 0 {
				revision = args[0]
			}
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.InfoAction(cmd.Context(), ctx, actions.InfoOptions{Revision: revision})
			})
		},
	}
}
