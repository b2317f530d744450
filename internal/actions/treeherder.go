package actions

import (
	"context"
	"fmt"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/runtime"
)

// TreeherderOptions specifies options for the treeherder command
type TreeherderOptions struct {
	Tree string
	Rev  string
}

// TreeherderAction prints the Treeherder URL for the push that brought Rev
// to Tree. A changeset may be in many trees, so the tree is required.
func TreeherderAction(ctx context.Context, run *runtime.Context, opts TreeherderOptions) error {
	if !run.Engine.IndexEnabled() {
		return pushlogerrors.ErrIndexDisabled
	}

	tree, ok := run.Engine.Trees().Lookup(opts.Tree)
	if !ok {
		return pushlogerrors.NewUnknownTreeError(opts.Tree)
	}
	node, err := run.Engine.Graph().Resolve(opts.Rev)
	if err != nil {
		return err
	}

	index := run.Engine.Index()
	push, ok, err := index.FirstPushTo(ctx, node, tree.Name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("could not find push info for changeset %s on %s", shortNode(node), tree.Name)
	}

	url := index.TreeherderURL(tree.Name, push.Head)
	if url == "" {
		return fmt.Errorf("%s has no Treeherder repository", tree.Name)
	}
	_, err = fmt.Fprintln(run.Splog.Writer(), url)
	return err
}
