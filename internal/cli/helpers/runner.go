// Package helpers provides shared helper functions for CLI commands.
package helpers

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"pushlog.dev/pushlog/internal/runtime"
)

// RepositoryFlag names the persistent flag selecting the repository
const RepositoryFlag = "repository"

// RepoDir returns the directory given with --repository, or the working directory
func RepoDir(cmd *cobra.Command) (string, error) {
	if dir, _ := cmd.Flags().GetString(RepositoryFlag); dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

// Run is a helper that provides a runtime context to a command's execution function
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) (err error) {
	dir, err := RepoDir(cmd)
	if err != nil {
		return err
	}
	ctx, err := runtime.GetContextAt(dir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, ctx.Close())
	}()
	return fn(ctx)
}
