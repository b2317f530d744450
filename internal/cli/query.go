package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pushlog.dev/pushlog/internal/actions"
	"pushlog.dev/pushlog/internal/cli/helpers"
	"pushlog.dev/pushlog/internal/revset"
	"pushlog.dev/pushlog/internal/runtime"
)

// newQueryCmd creates the query command
func newQueryCmd() *cobra.Command {
	var (
		exclude []string
		long    bool
	)

	cmd := &cobra.Command{
		Use:   "query EXPR...",
		Short: "Find revisions matching predicates",
		Long: `Print every revision matching all of the predicate expressions and none
of the --exclude expressions, in commit order.

Expressions take the form name(arg, ...). Quote arguments containing commas
or spaces. Available predicates:

` + predicateHelp(),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.QueryAction(cmd.Context(), ctx, actions.QueryOptions{
					Include: args,
					Exclude: exclude,
					Long:    long,
				})
			})
		},
	}

	cmd.Flags().StringArrayVarP(&exclude, "exclude", "x", nil, "Remove revisions matching this expression (repeatable)")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Print the first line of each description")

	return cmd
}

func predicateHelp() string {
	var b strings.Builder
	for _, spec := range revset.DefaultRegistry(true).Specs() {
		fmt.Fprintf(&b, "  %-24s %s\n", spec.Usage, spec.Doc)
	}
	return b.String()
}
