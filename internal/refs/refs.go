// Package refs keeps the stored remote refs of each tree in line with the
// branches the tree advertises.
package refs

import (
	"context"
	"sort"
	"strings"

	"pushlog.dev/pushlog/internal/store"
)

// RelbranchSuffix marks historical release branches
const RelbranchSuffix = "RELBRANCH"

// Store holds remote refs
type Store interface {
	RemoteRefs(ctx context.Context, prefix string) (map[string]string, error)
	ApplyRefChanges(ctx context.Context, set map[string]string, deleted []string) error
}

// Locker serializes writers
type Locker interface {
	Do(ctx context.Context, fn func() error) error
}

// Policy decides which branches become refs
type Policy struct {
	// IsRelease reports whether a tree keeps RELBRANCH refs
	IsRelease func(tree string) bool
	// DropRelbranches discards RELBRANCH refs on every tree
	DropRelbranches bool
}

func (p Policy) keep(tree, branch string) bool {
	if !strings.HasSuffix(branch, RelbranchSuffix) {
		return true
	}
	if p.DropRelbranches {
		return false
	}
	return p.IsRelease != nil && p.IsRelease(tree)
}

// Changes lists what a reconciliation wrote
type Changes struct {
	Set     map[string]string
	Deleted []string
}

// Empty reports whether nothing changed
func (c Changes) Empty() bool {
	return len(c.Set) == 0 && len(c.Deleted) == 0
}

// Reconciler applies advertised branch maps to the stored refs
type Reconciler struct {
	store  Store
	lock   Locker
	policy Policy
}

// NewReconciler creates a reconciler. A nil lock runs without locking.
func NewReconciler(s Store, lock Locker, policy Policy) *Reconciler {
	return &Reconciler{store: s, lock: lock, policy: policy}
}

func (r *Reconciler) locked(ctx context.Context, fn func() error) error {
	if r.lock == nil {
		return fn()
	}
	return r.lock.Do(ctx, fn)
}

// Reconcile makes the refs under tree/ match branches, a map of branch name
// to head changesets. When a branch has several heads the last one wins.
func (r *Reconciler) Reconcile(ctx context.Context, tree string, branches map[string][]string) (Changes, error) {
	var changes Changes
	err := r.locked(ctx, func() error {
		prefix := tree + "/"
		existing, err := r.store.RemoteRefs(ctx, prefix)
		if err != nil {
			return err
		}

		incoming := make(map[string]string)
		for branch, nodes := range branches {
			if !r.policy.keep(tree, branch) {
				continue
			}
			ref := prefix + branch
			incoming[ref] = ""
			for _, node := range nodes {
				incoming[ref] = node
			}
		}

		changes = Changes{Set: make(map[string]string)}
		for ref, node := range incoming {
			if node == "" {
				continue
			}
			if existing[ref] != node {
				changes.Set[ref] = node
			}
		}
		for ref := range existing {
			if _, ok := incoming[ref]; !ok {
				changes.Deleted = append(changes.Deleted, ref)
			}
		}
		sort.Strings(changes.Deleted)

		return r.store.ApplyRefChanges(ctx, changes.Set, changes.Deleted)
	})
	return changes, err
}

// PruneRelbranches deletes every stored RELBRANCH ref and returns their names
func (r *Reconciler) PruneRelbranches(ctx context.Context) ([]string, error) {
	var pruned []string
	err := r.locked(ctx, func() error {
		refs, err := r.store.RemoteRefs(ctx, "")
		if err != nil {
			return err
		}
		for ref := range refs {
			if strings.HasSuffix(ref, RelbranchSuffix) {
				pruned = append(pruned, ref)
			}
		}
		sort.Strings(pruned)
		return r.store.ApplyRefChanges(ctx, nil, pruned)
	})
	return pruned, err
}

var _ Locker = (*store.Lock)(nil)
