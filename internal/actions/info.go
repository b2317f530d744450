package actions

import (
	"context"
	"strings"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/output"
	"pushlog.dev/pushlog/internal/runtime"
)

// InfoOptions specifies options for the info command
type InfoOptions struct {
	// Revision to report on; empty prints database statistics
	Revision string
}

// InfoAction prints the provenance report of a revision
func InfoAction(ctx context.Context, run *runtime.Context, opts InfoOptions) error {
	if opts.Revision == "" {
		return statsAction(ctx, run)
	}
	report, err := run.Engine.Index().Report(ctx, opts.Revision)
	if err != nil {
		return err
	}
	return output.RenderReport(run.Splog.Writer(), report, nil)
}

func statsAction(ctx context.Context, run *runtime.Context) error {
	if !run.Engine.IndexEnabled() {
		return pushlogerrors.ErrIndexDisabled
	}
	stats, err := run.Engine.Stats(ctx)
	if err != nil {
		return err
	}
	run.Splog.Info("trees: %d", stats.Trees)
	run.Splog.Info("pushes: %d", stats.Pushes)
	run.Splog.Info("changesets: %d", stats.Changesets)
	run.Splog.Info("bugs: %d", stats.Bugs)
	run.Splog.Info("refs: %d", stats.Refs)
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
