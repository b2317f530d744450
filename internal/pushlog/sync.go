package pushlog

import (
	"context"
	"sort"

	"go.uber.org/multierr"

	"pushlog.dev/pushlog/internal/config"
	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/store"
)

// Store is the part of the index the syncer writes to
type Store interface {
	LastPushID(ctx context.Context, tree string) (int64, bool, error)
	AddPushes(ctx context.Context, tree string, pushes []store.Push) error
	WipePushlog(ctx context.Context) error
}

// Changesets checks that a changeset exists locally. Pushlog nodes are full
// hex ids, so only exact matches count.
type Changesets interface {
	HasNode(node string) bool
}

// Logger receives progress and warnings
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Result describes one SyncTree call
type Result struct {
	Tree      string
	FetchFrom int64
	Added     int
	// Truncated is set when processing stopped at a changeset missing locally
	Truncated *pushlogerrors.UnknownChangesetError
}

// Syncer merges remote pushlogs into the local index
type Syncer struct {
	store   Store
	graph   Changesets
	fetcher Fetcher
	log     Logger
}

// NewSyncer creates a syncer. A nil store means the local index is disabled.
func NewSyncer(s Store, graph Changesets, fetcher Fetcher, log Logger) *Syncer {
	return &Syncer{store: s, graph: graph, fetcher: fetcher, log: log}
}

// SyncTree fetches pushes newer than the last stored one and stores the
// prefix whose changesets all exist locally.
func (s *Syncer) SyncTree(ctx context.Context, tree config.Tree) (Result, error) {
	return s.syncTree(ctx, tree, tree.PushlogURI())
}

func (s *Syncer) syncTree(ctx context.Context, tree config.Tree, uri string) (Result, error) {
	result := Result{Tree: tree.Name}
	if s.store == nil {
		return result, pushlogerrors.ErrIndexDisabled
	}

	last, ok, err := s.store.LastPushID(ctx, tree.Name)
	if err != nil {
		return result, err
	}
	if ok {
		result.FetchFrom = last + 1
	}

	s.log.Debug("fetching pushlog for %s from push %d", tree.Name, result.FetchFrom)
	records, err := s.fetcher.FetchPushes(ctx, tree.Name, uri, result.FetchFrom)
	if err != nil {
		return result, err
	}

	pushes := make([]store.Push, 0, len(records))
records:
	for _, rec := range records {
		nodes := make([]string, 0, len(rec.Nodes))
		for _, node := range rec.Nodes {
			if !s.graph.HasNode(node) {
				// Only the verified prefix is stored
				result.Truncated = pushlogerrors.NewUnknownChangesetError(node)
				s.log.Warn("%s; not processing further pushes for %s", result.Truncated.Error(), tree.Name)
				break records
			}
			nodes = append(nodes, node)
		}
		pushes = append(pushes, store.Push{
			Tree:  tree.Name,
			ID:    rec.ID,
			User:  rec.User,
			When:  rec.When,
			Nodes: nodes,
		})
	}

	if err := s.store.AddPushes(ctx, tree.Name, pushes); err != nil {
		return result, err
	}
	result.Added = len(pushes)
	if result.Added > 0 {
		s.log.Info("added %d pushes to %s pushlog", result.Added, tree.Name)
	}
	return result, nil
}

// SyncAll syncs trees in name order, optionally wiping the pushlog first.
// A failing tree does not stop the others; all failures are returned together.
func (s *Syncer) SyncAll(ctx context.Context, trees []config.Tree, reset bool) ([]Result, error) {
	if s.store == nil {
		return nil, pushlogerrors.ErrIndexDisabled
	}

	if reset {
		s.log.Info("wiping pushlog data")
		if err := s.store.WipePushlog(ctx); err != nil {
			return nil, err
		}
	}

	ordered := append([]config.Tree(nil), trees...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	var errs error
	results := make([]Result, 0, len(ordered))
	for i, tree := range ordered {
		if len(ordered) > 1 {
			s.log.Info("syncing pushlog for %s (%d/%d)", tree.Name, i+1, len(ordered))
		} else {
			s.log.Info("syncing pushlog for %s", tree.Name)
		}
		res, err := s.SyncTree(ctx, tree)
		if err != nil {
			s.log.Warn("failed to sync pushlog for %s: %v", tree.Name, err)
			errs = multierr.Append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// AfterPull syncs the pushlog of a tree that was just pulled from uri.
// It never fails the pull: problems are logged as warnings.
func (s *Syncer) AfterPull(ctx context.Context, tree *config.Tree, uri string) {
	if tree == nil {
		s.log.Debug("not syncing pushlog: %s is not a known tree", uri)
		return
	}
	if tree.Name == config.TryTree {
		return
	}
	if s.store == nil {
		s.log.Debug("not syncing pushlog for %s: local database disabled", tree.Name)
		return
	}

	// Without a dedicated pushlog endpoint the pushlog comes from the pull source
	pushlogURI := tree.Pushlog
	if pushlogURI == "" {
		pushlogURI = uri
	}
	if !git.SupportsHTTP(pushlogURI) {
		s.log.Warn("cannot fetch pushlog when pulling via %s://", git.Transport(pushlogURI))
		return
	}

	if _, err := s.syncTree(ctx, *tree, pushlogURI); err != nil {
		s.log.Warn("unable to sync pushlog for %s: %v", tree.Name, err)
	}
}
