package cli

import (
	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/runtime"
)

// newPullCmd creates the pull command
func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull TREE|URI",
		Short: "Pull a tree and update the local index",
		Long: `Pull a tree, a configured git remote, a local path or a URI.

When the source is a known tree, its branches are recorded as refs named
TREE/BRANCH and its pushlog is synced. Bugs referenced by the new changesets
are added to the bug database.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: helpers.CompleteTrees,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.PullAction(cmd.Context(), ctx, actions.PullOptions{Source: args[0]})
			})
		},
	}
}
