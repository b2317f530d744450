package engine

import (
	"context"
	"fmt"
	"sort"

	"pushlog.dev/pushlog/internal/commitparser"
	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/pushlog"
	"pushlog.dev/pushlog/internal/refs"
)

// PulledNamespace holds the branches of pull sources that are not known trees
const PulledNamespace = "pulled"

// Pull fetches source, then brings the index up to date with what arrived:
// bugs of new changesets, the tree's refs and its pushlog.
func (e *engineImpl) Pull(ctx context.Context, source string) (PullResult, error) {
	res, err := e.resolver().Resolve(source)
	if err != nil {
		return PullResult{}, err
	}
	result := PullResult{URI: res.URI}
	namespace := PulledNamespace
	if res.Tree != nil {
		result.Tree = res.Tree.Name
		namespace = res.Tree.Name
	}

	before, err := e.repo.All()
	if err != nil {
		return result, err
	}

	e.log.Info("pulling from %s", res.URI)
	if err := e.runner.Fetch(ctx, res.URI, namespace); err != nil {
		return result, fmt.Errorf("failed to pull from %s: %w", res.URI, err)
	}
	e.Invalidate()

	after, err := e.repo.All()
	if err != nil {
		return result, err
	}
	known := make(map[string]struct{}, len(before))
	for _, node := range before {
		known[node] = struct{}{}
	}
	for _, node := range after {
		if _, ok := known[node]; !ok {
			result.NewChangesets = append(result.NewChangesets, node)
		}
	}
	e.log.Debug("pulled %d new changesets", len(result.NewChangesets))

	if e.db == nil {
		e.syncer.AfterPull(ctx, res.Tree, res.URI)
		return result, nil
	}

	if err := e.associateBugs(ctx, result.NewChangesets); err != nil {
		return result, err
	}

	if res.Tree != nil {
		branches, err := git.RemoteBranches(ctx, res.URI)
		if err != nil {
			return result, err
		}
		result.Refs, err = e.reconciler.Reconcile(ctx, res.Tree.Name, branches)
		if err != nil {
			return result, err
		}
	}

	err = e.lock.Do(ctx, func() error {
		e.syncer.AfterPull(ctx, res.Tree, res.URI)
		return nil
	})
	if err != nil {
		e.log.Warn("not syncing pushlog: %v", err)
	}
	e.index.Invalidate()
	return result, nil
}

func (e *engineImpl) associateBugs(ctx context.Context, nodes []string) error {
	bugsByNode := make(map[string][]int)
	for _, node := range nodes {
		commit, err := e.repo.Commit(node)
		if err != nil {
			return err
		}
		if bugs := commitparser.ParseBugs(commit.Description); len(bugs) > 0 {
			bugsByNode[node] = bugs
		}
	}
	if len(bugsByNode) == 0 {
		return nil
	}
	return e.lock.Do(ctx, func() error {
		return e.db.AssociateBugsBatch(ctx, bugsByNode)
	})
}

// syncTrees returns the trees a sync of names covers. Names may be trees,
// aliases or groups; no names means every tree except try.
func (e *engineImpl) syncTrees(names []string) ([]config.Tree, error) {
	if len(names) == 0 {
		for _, name := range e.trees.Names() {
			if name != config.TryTree {
				names = append(names, name)
			}
		}
	}

	seen := make(map[string]struct{})
	var trees []config.Tree
	for _, name := range names {
		expanded, err := e.trees.Expand(name)
		if err != nil {
			return nil, err
		}
		for _, treeName := range expanded {
			if _, ok := seen[treeName]; ok {
				continue
			}
			seen[treeName] = struct{}{}
			tree, ok := e.trees.Get(treeName)
			if !ok {
				continue
			}
			trees = append(trees, tree)
		}
	}
	return trees, nil
}

// SyncPlan returns the trees a sync of names covers, in sync order
func (e *engineImpl) SyncPlan(names []string) ([]config.Tree, error) {
	trees, err := e.syncTrees(names)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(trees, func(i, j int) bool { return trees[i].Name < trees[j].Name })
	return trees, nil
}

// Sync fetches new pushes for the named trees
func (e *engineImpl) Sync(ctx context.Context, names []string, reset bool) ([]pushlog.Result, error) {
	if err := e.requireIndex(); err != nil {
		return nil, err
	}
	trees, err := e.syncTrees(names)
	if err != nil {
		return nil, err
	}

	var results []pushlog.Result
	err = e.lock.Do(ctx, func() error {
		var err error
		results, err = e.syncer.SyncAll(ctx, trees, reset)
		return err
	})
	e.index.Invalidate()
	return results, err
}

// SyncBugs associates bugs with every changeset in the clone and returns how
// many changesets reference a bug
func (e *engineImpl) SyncBugs(ctx context.Context, reset bool) (int, error) {
	if err := e.requireIndex(); err != nil {
		return 0, err
	}
	if reset {
		e.log.Info("wiping bug database")
		err := e.lock.Do(ctx, func() error {
			return e.db.WipeBugs(ctx)
		})
		if err != nil {
			return 0, err
		}
	}

	nodes, err := e.repo.All()
	if err != nil {
		return 0, err
	}
	e.log.Info("finding bugs in %d changesets", len(nodes))

	bugsByNode := make(map[string][]int)
	for _, node := range nodes {
		commit, err := e.repo.Commit(node)
		if err != nil {
			return 0, err
		}
		if bugs := commitparser.ParseBugs(commit.Description); len(bugs) > 0 {
			bugsByNode[node] = bugs
		}
	}
	err = e.lock.Do(ctx, func() error {
		return e.db.AssociateBugsBatch(ctx, bugsByNode)
	})
	if err != nil {
		return 0, err
	}
	return len(bugsByNode), nil
}

// Reconcile applies a branch map to the refs of tree
func (e *engineImpl) Reconcile(ctx context.Context, tree string, branches map[string][]string) (refs.Changes, error) {
	if err := e.requireIndex(); err != nil {
		return refs.Changes{}, err
	}
	t, ok := e.trees.Lookup(tree)
	if !ok {
		return refs.Changes{}, e.unknownTree(tree)
	}
	changes, err := e.reconciler.Reconcile(ctx, t.Name, branches)
	e.index.Invalidate()
	return changes, err
}

// PruneRelbranches deletes every RELBRANCH ref
func (e *engineImpl) PruneRelbranches(ctx context.Context) ([]string, error) {
	if err := e.requireIndex(); err != nil {
		return nil, err
	}
	pruned, err := e.reconciler.PruneRelbranches(ctx)
	e.index.Invalidate()
	return pruned, err
}

func (e *engineImpl) unknownTree(name string) error {
	_, err := e.trees.Expand(name)
	if err == nil {
		return fmt.Errorf("%s names a group, not a single tree", name)
	}
	return err
}
