package helpers

import (
	"sort"

	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/git"
)

// CompleteTrees is a helper for cobra.ValidArgsFunction that returns every
// tree name and alias known to the repository.
func CompleteTrees(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	trees := config.DefaultTrees()
	if dir, err := RepoDir(cmd); err == nil {
		if repo, err := git.OpenRepository(dir); err == nil {
			if loaded, err := config.LoadTrees(repo.GetRepoRoot()); err == nil {
				trees = loaded
			}
		}
	}

	var names []string
	for _, name := range trees.Names() {
		names = append(names, name)
		names = append(names, trees.Aliases(name)...)
	}
	sort.Strings(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}
