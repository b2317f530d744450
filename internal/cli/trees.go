package cli

import (
	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/output"
)

// newTreesCmd creates the trees command
func newTreesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trees",
		Short: "Show the known trees and their aliases",
		Long: `Show the known trees and their aliases.

Outside a repository the built-in registry is shown; inside one, trees from
.git/pushlog_trees.yaml are included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			trees := config.DefaultTrees()
			if dir, err := helpers.RepoDir(cmd); err == nil {
				if repo, err := git.OpenRepository(dir); err == nil {
					trees, err = config.LoadTrees(repo.GetRepoRoot())
					if err != nil {
						return err
					}
				}
			}
			return output.RenderTrees(cmd.OutOrStdout(), trees)
		},
	}
}
