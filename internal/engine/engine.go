package engine

import (
	"context"

	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/provenance"
	"pushlog.dev/pushlog/internal/pushlog"
	"pushlog.dev/pushlog/internal/refs"
	"pushlog.dev/pushlog/internal/revset"
	"pushlog.dev/pushlog/internal/store"
)

// Logger receives progress and warnings
type Logger = pushlog.Logger

// IndexReader provides read-only access to the clone and its index
type IndexReader interface {
	Config() *config.RepoConfig
	Trees() *config.Trees
	Graph() git.Graph
	Index() *provenance.Index
	IndexEnabled() bool
	// Identity is the user matched by me(): the configured username, else git's user
	Identity() string

	RemoteRefs(ctx context.Context, prefix string) (map[string]string, error)
	ChangesetsWithBugs(ctx context.Context, bugs []int) ([]string, error)
	Query(ctx context.Context, include, exclude []string) (revset.RevSet, error)
	Registry() *revset.Registry
	Stats(ctx context.Context) (store.Stats, error)
	// LocalBranches maps local branch names to their tips
	LocalBranches() (map[string]string, error)
	// SyncPlan expands tree names, aliases and groups into the trees Sync covers
	SyncPlan(names []string) ([]config.Tree, error)
}

// IndexWriter provides operations that change the clone or its index
type IndexWriter interface {
	Pull(ctx context.Context, source string) (PullResult, error)
	Sync(ctx context.Context, names []string, reset bool) ([]pushlog.Result, error)
	SyncBugs(ctx context.Context, reset bool) (int, error)
	Reconcile(ctx context.Context, tree string, branches map[string][]string) (refs.Changes, error)
	PruneRelbranches(ctx context.Context) ([]string, error)
}

// Engine is the provenance-aware view of a local clone
type Engine interface {
	IndexReader
	IndexWriter

	// Invalidate drops cached graph and release data
	Invalidate()
	Close() error
}

// PullResult describes one Pull
type PullResult struct {
	// URI is where content came from
	URI string
	// Tree is the known tree behind URI, empty for other sources
	Tree string
	// NewChangesets are the revisions the pull added, in commit order
	NewChangesets []string
	// Refs are the ref changes made for a known tree
	Refs refs.Changes
}
