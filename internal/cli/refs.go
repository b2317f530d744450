package cli

import (
	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/runtime"
)

// newRefsCmd creates the refs command
func newRefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs [PREFIX]",
		Short: "List the stored remote refs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.RefsAction(cmd.Context(), ctx, actions.RefsOptions{Prefix: prefix})
			})
		},
	}
}

// newReconcileCmd creates the reconcile command
func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile TREE BRANCH=NODE...",
		Short: "Make the stored refs of a tree match a branch map",
		Long: `Make the stored refs of a tree match the given branches. Refs of the tree
whose branch is not listed are removed; refs of other trees are untouched.

Repeat a branch to give it several heads; the last one wins. RELBRANCH
branches are only kept for release trees.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: helpers.CompleteTrees,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.ReconcileAction(cmd.Context(), ctx, actions.ReconcileOptions{
					Tree:     args[0],
					Branches: args[1:],
				})
			})
		},
	}
}

// newPruneRelbranchesCmd creates the prune-relbranches command
func newPruneRelbranchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-relbranches",
		Short: "Delete refs pointing at release branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.PruneRelbranchesAction(cmd.Context(), ctx)
			})
		},
	}
}
