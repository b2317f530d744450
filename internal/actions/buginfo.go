package actions

import (
	"context"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/runtime"
)

// BuginfoOptions specifies options for the buginfo command
type BuginfoOptions struct {
	Bugs []int
	All  bool
	// Sync associates bugs with changesets not yet in the bug database
	Sync bool
	// Reset wipes and repopulates the bug database
	Reset bool
}

// BuginfoAction prints the pushes of every changeset referencing the bugs
func BuginfoAction(ctx context.Context, run *runtime.Context, opts BuginfoOptions) error {
	if !run.Engine.IndexEnabled() {
		return pushlogerrors.ErrIndexDisabled
	}

	if opts.Sync || opts.Reset {
		count, err := run.Engine.SyncBugs(ctx, opts.Reset)
		if err != nil {
			return err
		}
		run.Splog.Info("%d changesets reference a bug", count)
		return nil
	}

	nodes, err := run.Engine.ChangesetsWithBugs(ctx, opts.Bugs)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		shown, err := printChangesetPushes(ctx, run, node, opts.All)
		if err != nil {
			return err
		}
		if !shown {
			run.Splog.Warn("no pushes recorded for changeset %s", shortNode(node))
			continue
		}
		run.Splog.Newline()
	}
	return nil
}
