package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/runtime"
)

// newBuginfoCmd creates the buginfo command
func newBuginfoCmd() *cobra.Command {
	var (
		all   bool
		reset bool
		sync  bool
	)

	cmd := &cobra.Command{
		Use:   "buginfo [BUG...]",
		Short: "Show the pushes of changesets referencing bugs",
		Long: `Show the pushes of every changeset whose description references one of
the bugs, in commit order.

--sync adds bugs of changesets missing from the bug database; --reset wipes
and rebuilds it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bugs := make([]int, 0, len(args))
			for _, arg := range args {
				bug, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(arg), "bug"))
				if err != nil || bug <= 0 {
					return fmt.Errorf("invalid bug number %q", arg)
				}
				bugs = append(bugs, bug)
			}
			if len(bugs) == 0 && !sync && !reset {
				return fmt.Errorf("specify at least one bug, --sync or --reset")
			}

			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.BuginfoAction(cmd.Context(), ctx, actions.BuginfoOptions{
					Bugs:  bugs,
					All:   all,
					Sync:  sync,
					Reset: reset,
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show all trees, not just release trees")
	cmd.Flags().BoolVar(&reset, "reset", false, "Wipe and repopulate the bug database")
	cmd.Flags().BoolVar(&sync, "sync", false, "Synchronize the bug database")

	return cmd
}
