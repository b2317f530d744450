package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pushlog.dev/pushlog/internal/output"
	"pushlog.dev/pushlog/internal/runtime"
)

// RefsOptions specifies options for the refs command
type RefsOptions struct {
	Prefix string
}

// RefsAction lists stored remote refs
func RefsAction(ctx context.Context, run *runtime.Context, opts RefsOptions) error {
	refs, err := run.Engine.RemoteRefs(ctx, opts.Prefix)
	if err != nil {
		return err
	}
	return output.RenderRefs(run.Splog.Writer(), refs)
}

// ReconcileOptions specifies options for the reconcile command
type ReconcileOptions struct {
	Tree string
	// Branches are BRANCH=NODE assignments; a branch may repeat for several heads
	Branches []string
}

// ParseBranchMap turns BRANCH=NODE assignments into a branch map, keeping
// the order heads were given in
func ParseBranchMap(assignments []string) (map[string][]string, error) {
	branches := make(map[string][]string)
	for _, a := range assignments {
		branch, node, ok := strings.Cut(a, "=")
		if !ok || branch == "" {
			return nil, fmt.Errorf("expected BRANCH=NODE, got %q", a)
		}
		if _, ok := branches[branch]; !ok {
			branches[branch] = nil
		}
		if node != "" {
			branches[branch] = append(branches[branch], node)
		}
	}
	return branches, nil
}

// ReconcileAction makes the stored refs of a tree match a branch map
func ReconcileAction(ctx context.Context, run *runtime.Context, opts ReconcileOptions) error {
	branches, err := ParseBranchMap(opts.Branches)
	if err != nil {
		return err
	}
	changes, err := run.Engine.Reconcile(ctx, opts.Tree, branches)
	if err != nil {
		return err
	}
	if changes.Empty() {
		run.Splog.Info("refs already up to date")
		return nil
	}

	names := make([]string, 0, len(changes.Set))
	for name := range changes.Set {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		run.Splog.Info("updated %s -> %s", name, shortNode(changes.Set[name]))
	}
	for _, name := range changes.Deleted {
		run.Splog.Info("removed %s", name)
	}
	return nil
}

// PruneRelbranchesAction deletes every RELBRANCH ref
func PruneRelbranchesAction(ctx context.Context, run *runtime.Context) error {
	pruned, err := run.Engine.PruneRelbranches(ctx)
	if err != nil {
		return err
	}
	for _, name := range pruned {
		run.Splog.Info("removed %s", name)
	}
	run.Splog.Info("pruned %d release branch refs", len(pruned))
	return nil
}
