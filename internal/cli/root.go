package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/cli/helpers"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pushlog",
		Short: "Pushlog tracks where and when changesets landed",
		Long: `Pushlog keeps a local index of the pushlogs of the trees a clone pulls from,
and answers which tree a changeset first landed on, when, and in which release.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP(helpers.RepositoryFlag, "R", "", "Repository to operate on (default: the current directory)")

	rootCmd.AddCommand(
		newInitCmd(),
		newTreesCmd(),
		newPullCmd(),
		newSyncCmd(),
		newPushesCmd(),
		newBuginfoCmd(),
		newQueryCmd(),
		newInfoCmd(),
		newRefsCmd(),
		newReconcileCmd(),
		newPruneRelbranchesCmd(),
		newTreeherderCmd(),
		newMyBookmarksCmd(),
	)

	return rootCmd
}
