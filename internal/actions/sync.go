package actions

import (
	"context"

	"go.uber.org/multierr"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/runtime"
	"pushlog.dev/pushlog/internal/tui"
)

// SyncOptions specifies options for the sync command
type SyncOptions struct {
	// Trees are tree names, aliases or groups; empty means every tree
	Trees []string
	// Reset wipes the stored pushlog before syncing
	Reset bool
	// Force skips the confirmation for Reset
	Force bool
}

// SyncAction fetches new pushes into the local index, one tree at a time
func SyncAction(ctx context.Context, run *runtime.Context, opts SyncOptions) error {
	if !run.Engine.IndexEnabled() {
		return pushlogerrors.ErrIndexDisabled
	}

	trees, err := run.Engine.SyncPlan(opts.Trees)
	if err != nil {
		return err
	}

	if opts.Reset {
		ok, err := tui.Confirm("Wipe all stored pushlog data and sync again?", opts.Force)
		if err != nil {
			return err
		}
		if !ok {
			run.Splog.Info("Not wiping pushlog data.")
			run.Splog.Tip("pass --force to skip the confirmation")
			return nil
		}
	}

	names := make([]string, len(trees))
	for i, tree := range trees {
		names[i] = tree.Name
	}

	total := 0
	err = tui.RunSyncProgress(names, func(idx int) (tui.SyncOutcome, error) {
		// The wipe rides on the first tree
		results, err := run.Engine.Sync(ctx, names[idx:idx+1], opts.Reset && idx == 0)
		if err != nil || len(results) == 0 {
			return tui.SyncOutcome{}, err
		}
		res := results[0]
		total += res.Added
		outcome := tui.SyncOutcome{Added: res.Added}
		if res.Truncated != nil {
			outcome.Note = res.Truncated.Error()
		}
		return outcome, nil
	}, run.Splog)

	failed := len(multierr.Errors(err))
	run.Splog.Info("synced %d trees, %d new pushes", len(trees)-failed, total)
	if failed > 0 {
		run.Splog.Error("failed to sync %d of %d trees", failed, len(trees))
	}
	return err
}
