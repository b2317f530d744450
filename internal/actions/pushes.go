package actions

import (
	"context"
	"fmt"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/output"
	"pushlog.dev/pushlog/internal/provenance"
	"pushlog.dev/pushlog/internal/runtime"
)

// PushesOptions specifies options for the pushes command
type PushesOptions struct {
	Revision string
	// All includes non-release trees
	All bool
}

// PushesAction prints how a changeset propagated to the trees
func PushesAction(ctx context.Context, run *runtime.Context, opts PushesOptions) error {
	if !run.Engine.IndexEnabled() {
		return pushlogerrors.ErrIndexDisabled
	}
	node, err := run.Engine.Graph().Resolve(opts.Revision)
	if err != nil {
		return err
	}
	shown, err := printChangesetPushes(ctx, run, node, opts.All)
	if err != nil {
		return err
	}
	if !shown {
		return fmt.Errorf("no pushes recorded for changeset %s", shortNode(node))
	}
	return nil
}

// printChangesetPushes renders the push table of node, returning false when
// no push qualifies
func printChangesetPushes(ctx context.Context, run *runtime.Context, node string, all bool) (bool, error) {
	index := run.Engine.Index()
	pushes, err := index.Pushes(ctx, node)
	if err != nil {
		return false, err
	}

	var rows []output.PushRow
	for _, push := range pushes {
		if !all && !index.IsReleaseTree(push.Tree) {
			continue
		}
		release, err := earliestRelease(ctx, index, node, push.Tree)
		if err != nil {
			return false, err
		}
		rows = append(rows, output.PushRow{
			Release: release,
			Tree:    push.Tree,
			When:    push.When,
			User:    push.User,
			URL:     index.TreeherderURL(push.Tree, push.Head),
		})
	}
	if len(rows) == 0 {
		return false, nil
	}

	commit, err := run.Engine.Graph().Commit(node)
	if err != nil {
		return false, err
	}
	cs := output.Changeset{Node: node, Description: commit.Description}
	return true, output.RenderPushes(run.Splog.Writer(), cs, rows, nil)
}

// earliestRelease returns the lowest version of tree's kind containing node
func earliestRelease(ctx context.Context, index *provenance.Index, node, tree string) (string, error) {
	var kind string
	switch tree {
	case "beta":
		kind = provenance.BetaKind
	case "release":
		kind = provenance.ReleaseKind
	default:
		return "", nil
	}
	releases, err := index.ReleasesContaining(ctx, node, kind)
	if err != nil || len(releases) == 0 {
		return "", err
	}
	return releases[0], nil
}
