package cli

import (
	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/runtime"
)

// newPushesCmd creates the pushes command
func newPushesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "pushes REV",
		Short: "Show how a changeset propagated to the trees",
		Long: `Show every recorded push of a changeset with its date, pusher, the earliest
release containing it and a link to its build results.

Only release trees are shown unless --all is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.PushesAction(cmd.Context(), ctx, actions.PushesOptions{
					Revision: args[0],
					All:      all,
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show all trees, not just release trees")

	return cmd
}
