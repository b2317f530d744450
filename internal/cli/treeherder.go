package cli

import (
	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/runtime"
)

// newTreeherderCmd creates the treeherder command
func newTreeherderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "treeherder TREE REV",
		Short: "Print the Treeherder URL for the push of a revision",
		Long: `Print the Treeherder URL showing build results for the push that brought
REV to TREE. The tree is required because a changeset may be pushed to
several trees.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: helpers.CompleteTrees,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.TreeherderAction(cmd.Context(), ctx, actions.TreeherderOptions{
					Tree: args[0],
					Rev:  args[1],
				})
			})
		},
	}
}
