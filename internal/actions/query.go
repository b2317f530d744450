package actions

import (
	"context"
	"fmt"

	"pushlog.dev/pushlog/internal/runtime"
)

// QueryOptions specifies options for the query command
type QueryOptions struct {
	// Include expressions must all match
	Include []string
	// Exclude expressions remove their matches
	Exclude []string
	// Long prints the first line of each description
	Long bool
}

// QueryAction prints the revisions matching the predicate expressions
func QueryAction(ctx context.Context, run *runtime.Context, opts QueryOptions) error {
	result, err := run.Engine.Query(ctx, opts.Include, opts.Exclude)
	if err != nil {
		return err
	}
	w := run.Splog.Writer()
	for _, node := range result {
		if !opts.Long {
			if _, err := fmt.Fprintln(w, node); err != nil {
				return err
			}
			continue
		}
		commit, err := run.Engine.Graph().Commit(node)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", shortNode(node), firstLine(commit.Description)); err != nil {
			return err
		}
	}
	return nil
}
