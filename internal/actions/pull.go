package actions

import (
	"context"
	"sort"

	"pushlog.dev/pushlog/internal/runtime"
	"pushlog.dev/pushlog/internal/tui"
)

// PullOptions specifies options for the pull command
type PullOptions struct {
	Source string
}

// PullAction fetches a tree and updates the index with what arrived
func PullAction(ctx context.Context, run *runtime.Context, opts PullOptions) error {
	result, err := run.Engine.Pull(ctx, opts.Source)
	if err != nil {
		return err
	}

	source := result.URI
	if result.Tree != "" {
		source = result.Tree
	}
	run.Splog.Info("pulled %d new changesets from %s", len(result.NewChangesets), tui.ColorCyan(source))

	names := make([]string, 0, len(result.Refs.Set))
	for name := range result.Refs.Set {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		run.Splog.Info("  %s -> %s", name, shortNode(result.Refs.Set[name]))
	}
	for _, name := range result.Refs.Deleted {
		run.Splog.Info("  %s %s", name, tui.ColorDim("(removed)"))
	}
	return nil
}

func shortNode(node string) string {
	if len(node) > 12 {
		return node[:12]
	}
	return node
}
