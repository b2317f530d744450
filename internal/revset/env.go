package revset

import (
	"context"
	"iter"
	"time"

	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/provenance"
	"pushlog.dev/pushlog/internal/store"
)

// Store is the part of the local index queries scan directly
type Store interface {
	TreePushHeads(ctx context.Context, tree string) iter.Seq2[store.PushHead, error]
	RemoteRef(ctx context.Context, name string) (string, bool, error)
}

// Env is the state predicates evaluate against
type Env struct {
	Graph git.Graph
	// Store is nil when the local index is disabled
	Store Store
	// Index answers push questions; nil reports no pushes
	Index *provenance.Index
	Trees *config.Trees
	// User is the configured identity matched by me()
	User string
	// Nick is the reviewer nick matched by me()
	Nick string
	// Location interprets dates without a zone; time.Local when nil
	Location *time.Location
	// Now anchors relative date specs; time.Now when nil
	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) description(node string) (string, error) {
	commit, err := e.Graph.Commit(node)
	if err != nil {
		return "", err
	}
	return commit.Description, nil
}

func (e *Env) pushes(ctx context.Context, node string) ([]store.PushRef, error) {
	if e.Index == nil {
		return nil, nil
	}
	return e.Index.Pushes(ctx, node)
}

func (e *Env) firstPush(ctx context.Context, node string) (store.PushRef, bool, error) {
	if e.Index == nil {
		return store.PushRef{}, false, nil
	}
	return e.Index.FirstPush(ctx, node)
}

func (e *Env) isPushHead(ctx context.Context, node string) (bool, error) {
	if e.Index == nil {
		return false, nil
	}
	return e.Index.IsPushHead(ctx, node, "")
}

func (e *Env) tree(name string) (config.Tree, error) {
	trees := e.Trees
	if trees == nil {
		trees = config.DefaultTrees()
	}
	return lookupTree(trees, name)
}
