package config

import (
	"os"
	"strings"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// Resolution is the outcome of resolving a user supplied pull source
type Resolution struct {
	// URI is where content is pulled from
	URI string
	// Tree is the known tree behind URI, nil when the source is not a known tree
	Tree *Tree
}

// ResolveStep is one link of the resolver chain
type ResolveStep interface {
	Resolve(source string) (Resolution, bool)
}

// RemoteLookup returns the URL of a git remote configured in the local repository
type RemoteLookup func(name string) (string, bool)

// DirectStep resolves configured git remotes, local paths and literal URIs
type DirectStep struct {
	Trees   *Trees
	Remotes RemoteLookup
}

// Resolve implements ResolveStep
func (s DirectStep) Resolve(source string) (Resolution, bool) {
	var uri string
	if s.Remotes != nil {
		if remoteURI, ok := s.Remotes(source); ok {
			uri = remoteURI
		}
	}
	if uri == "" {
		if strings.Contains(source, "://") || strings.HasPrefix(source, "git@") {
			uri = source
		} else if info, err := os.Stat(source); err == nil && info.IsDir() {
			uri = source
		}
	}
	if uri == "" {
		return Resolution{}, false
	}

	res := Resolution{URI: uri}
	if s.Trees != nil {
		if tree, ok := s.Trees.TreeForURI(uri); ok {
			res.Tree = &tree
		}
	}
	return res, true
}

// AliasStep resolves tree names and aliases from the registry
type AliasStep struct {
	Trees *Trees
}

// Resolve implements ResolveStep
func (s AliasStep) Resolve(source string) (Resolution, bool) {
	tree, ok := s.Trees.Lookup(source)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{URI: tree.URI, Tree: &tree}, true
}

// Resolver tries each step in order; a local path or remote that shares a name
// with a known tree therefore stays reachable.
type Resolver struct {
	steps []ResolveStep
}

// NewResolver creates the default chain: direct resolution, then aliases
func NewResolver(trees *Trees, remotes RemoteLookup) *Resolver {
	return &Resolver{steps: []ResolveStep{
		DirectStep{Trees: trees, Remotes: remotes},
		AliasStep{Trees: trees},
	}}
}

// NewResolverWithSteps creates a resolver from explicit steps
func NewResolverWithSteps(steps ...ResolveStep) *Resolver {
	return &Resolver{steps: steps}
}

// Resolve returns the first successful resolution
func (r *Resolver) Resolve(source string) (Resolution, error) {
	for _, step := range r.steps {
		if res, ok := step.Resolve(source); ok {
			return res, nil
		}
	}
	return Resolution{}, pushlogerrors.NewUnknownTreeError(source)
}
