package cli

import (
	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/runtime"
)

// newMyBookmarksCmd creates the mybookmarks command
func newMyBookmarksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mybookmarks",
		Short: "List local branches that belong to you",
		Long: `List local branches whose name starts with your configured IRC nick
followed by a slash, or whose tip you authored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, actions.MyBookmarksAction)
		},
	}
}
