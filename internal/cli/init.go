package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/git"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var (
		ircnick         string
		username        string
		headless        bool
		disableDatabase bool
		force           bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the pushlog configuration of a repository",
		Long: `Write .git/.pushlog_config for the repository.

An existing configuration is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := helpers.RepoDir(cmd)
			if err != nil {
				return err
			}
			repo, err := git.OpenRepository(dir)
			if err != nil {
				return fmt.Errorf("not a git repository: %w", err)
			}
			repoRoot := repo.GetRepoRoot()

			if config.IsInitialized(repoRoot) && !force {
				return fmt.Errorf("%s already exists; pass --force to overwrite it", config.ConfigPath(repoRoot))
			}

			cfg := &config.RepoConfig{}
			if ircnick != "" {
				cfg.IRCNick = &ircnick
			}
			if username != "" {
				cfg.Username = &username
			}
			if headless {
				cfg.Headless = &headless
			}
			if disableDatabase {
				cfg.DisableLocalDatabase = &disableDatabase
			}
			if _, err := cfg.RequireNick(); err != nil {
				return err
			}
			if err := config.WriteRepoConfig(repoRoot, cfg); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.ConfigPath(repoRoot))
			return err
		},
	}

	cmd.Flags().StringVar(&ircnick, "ircnick", "", "Your IRC nickname, matched by me() among reviewers")
	cmd.Flags().StringVar(&username, "username", "", "Identity matched by me() (default: git's user)")
	cmd.Flags().BoolVar(&headless, "headless", false, "Running on a server; no IRC nickname required")
	cmd.Flags().BoolVar(&disableDatabase, "disable-local-database", false, "Do not keep a local pushlog database")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")

	return cmd
}
