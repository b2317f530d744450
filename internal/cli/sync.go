package cli

import (
	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/runtime"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var (
		force bool
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "sync [TREE...]",
		Short: "Fetch new pushes for the known trees",
		Long: `Fetch pushes newer than the last stored one for each named tree, alias or
group. Without arguments every tree except try is synced.

Pushes whose changesets are not in the local repository are not stored; pull
the tree first.`,
		ValidArgsFunction: helpers.CompleteTrees,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.SyncAction(cmd.Context(), ctx, actions.SyncOptions{
					Trees: args,
					Reset: reset,
					Force: force,
				})
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Wipe the stored pushlog before syncing")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Don't prompt for confirmation before wiping")

	return cmd
}
