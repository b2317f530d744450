package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"pushlog.dev/pushlog/internal/config"
	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/provenance"
	"pushlog.dev/pushlog/internal/pushlog"
	"pushlog.dev/pushlog/internal/refs"
	"pushlog.dev/pushlog/internal/revset"
	"pushlog.dev/pushlog/internal/store"
)

// engineImpl is the Engine backed by a go-git repository and a SQLite index
type engineImpl struct {
	repoRoot string
	cfg      *config.RepoConfig
	trees    *config.Trees
	repo     *git.Repository
	runner   *git.CommandRunner
	log      Logger

	// db is nil when the local index is disabled
	db         *store.Store
	lock       *store.Lock
	syncer     *pushlog.Syncer
	index      *provenance.Index
	reconciler *refs.Reconciler
	registry   *revset.Registry
}

// Options overrides parts of the engine, mostly for tests
type Options struct {
	// Fetcher replaces the HTTP pushlog client
	Fetcher pushlog.Fetcher
	// LockTimeout bounds waits on the writer lock
	LockTimeout time.Duration
}

// Open builds the engine for the repository at repoRoot
func Open(repoRoot string, log Logger) (Engine, error) {
	return OpenWithOptions(repoRoot, log, Options{})
}

// OpenWithOptions builds the engine with overrides
func OpenWithOptions(repoRoot string, log Logger, opts Options) (Engine, error) {
	repo, err := git.OpenRepository(repoRoot)
	if err != nil {
		return nil, err
	}
	repoRoot = repo.GetRepoRoot()

	cfg, err := config.GetRepoConfig(repoRoot)
	if err != nil {
		return nil, err
	}
	trees, err := config.LoadTrees(repoRoot)
	if err != nil {
		return nil, err
	}

	gitDir := filepath.Join(repoRoot, ".git")
	e := &engineImpl{
		repoRoot: repoRoot,
		cfg:      cfg,
		trees:    trees,
		repo:     repo,
		runner:   git.NewCommandRunner(repoRoot),
		log:      log,
		lock:     store.NewLock(store.LockPath(gitDir)),
		registry: revset.DefaultRegistry(cfg.IndexEnabled()),
	}
	if opts.LockTimeout > 0 {
		e.lock = e.lock.WithTimeout(opts.LockTimeout)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = pushlog.NewClient(context.Background(), cfg.FetchTimeout())
	}

	indexOpts := provenance.Options{
		MilestonePath: cfg.Milestone(),
		TreeherderURL: cfg.Treeherder(),
		ReleaseTrees:  cfg.ReleaseTrees,
	}

	if !cfg.IndexEnabled() {
		e.syncer = pushlog.NewSyncer(nil, repo, fetcher, log)
		e.index = provenance.New(nil, repo, trees, indexOpts)
		return e, nil
	}

	db, err := store.Open(filepath.Join(gitDir, store.FileName))
	if err != nil {
		return nil, err
	}
	e.db = db
	e.syncer = pushlog.NewSyncer(db, repo, fetcher, log)
	e.index = provenance.New(db, repo, trees, indexOpts)
	e.reconciler = refs.NewReconciler(db, e.lock, refs.Policy{
		IsRelease: func(tree string) bool {
			return trees.IsRelease(tree, cfg.ReleaseTrees...)
		},
		DropRelbranches: !cfg.KeepRelbranches(),
	})
	return e, nil
}

// Config returns the repository configuration
func (e *engineImpl) Config() *config.RepoConfig {
	return e.cfg
}

// Trees returns the tree registry
func (e *engineImpl) Trees() *config.Trees {
	return e.trees
}

// Graph returns the revision graph
func (e *engineImpl) Graph() git.Graph {
	return e.repo
}

// Index returns the provenance index
func (e *engineImpl) Index() *provenance.Index {
	return e.index
}

// IndexEnabled reports whether the local database is in use
func (e *engineImpl) IndexEnabled() bool {
	return e.db != nil
}

// Registry returns the predicates available to queries
func (e *engineImpl) Registry() *revset.Registry {
	return e.registry
}

func (e *engineImpl) Identity() string {
	if e.cfg.Username != nil && *e.cfg.Username != "" {
		return *e.cfg.Username
	}
	return e.repo.Identity()
}

func (e *engineImpl) LocalBranches() (map[string]string, error) {
	return e.repo.LocalBranches()
}

func (e *engineImpl) resolver() *config.Resolver {
	return config.NewResolver(e.trees, e.repo.RemoteURL)
}

func (e *engineImpl) requireIndex() error {
	if e.db == nil {
		return pushlogerrors.ErrIndexDisabled
	}
	return nil
}

// RemoteRefs returns stored refs whose name starts with prefix
func (e *engineImpl) RemoteRefs(ctx context.Context, prefix string) (map[string]string, error) {
	if err := e.requireIndex(); err != nil {
		return nil, err
	}
	return e.db.RemoteRefs(ctx, prefix)
}

// ChangesetsWithBugs returns the changesets referencing any of bugs, in commit order
func (e *engineImpl) ChangesetsWithBugs(ctx context.Context, bugs []int) ([]string, error) {
	if err := e.requireIndex(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var nodes []string
	for _, bug := range bugs {
		found, err := e.db.ChangesetsWithBug(ctx, bug)
		if err != nil {
			return nil, err
		}
		for node := range found {
			if _, ok := seen[node]; ok {
				continue
			}
			seen[node] = struct{}{}
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		pi, pj := e.repo.Position(nodes[i]), e.repo.Position(nodes[j])
		if pi != pj {
			return pi < pj
		}
		return nodes[i] < nodes[j]
	})
	return nodes, nil
}

// Query evaluates revset expressions against the whole graph
func (e *engineImpl) Query(ctx context.Context, include, exclude []string) (revset.RevSet, error) {
	env := &revset.Env{
		Graph:    e.repo,
		Index:    e.index,
		Trees:    e.trees,
		User:     e.Identity(),
		Nick:     e.cfg.Nick(),
		Location: time.Local,
	}
	if e.db != nil {
		env.Store = e.db
	}
	return revset.NewExecutor(e.registry, env).Query(ctx, include, exclude)
}

// Stats counts the rows of the local database
func (e *engineImpl) Stats(ctx context.Context) (store.Stats, error) {
	if err := e.requireIndex(); err != nil {
		return store.Stats{}, err
	}
	return e.db.Stats(ctx)
}

// Invalidate drops cached graph and release data
func (e *engineImpl) Invalidate() {
	e.repo.Invalidate()
	e.index.Invalidate()
}

// Close releases the database
func (e *engineImpl) Close() error {
	if e.db == nil {
		return nil
	}
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("failed to close pushlog database: %w", err)
	}
	return nil
}
