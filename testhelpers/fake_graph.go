package testhelpers

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pushlog.dev/pushlog/internal/git"
)

// FakeGraph is an in-memory revision graph for tests that do not need a real repository.
// Node ids are arbitrary strings; Resolve also accepts unique prefixes.
type FakeGraph struct {
	commits map[string]*git.CommitInfo
	files   map[string]map[string][]byte
	base    time.Time
	order   []string
}

var _ git.Graph = (*FakeGraph)(nil)

// NewFakeGraph creates an empty graph
func NewFakeGraph() *FakeGraph {
	return &FakeGraph{
		commits: make(map[string]*git.CommitInfo),
		files:   make(map[string]map[string][]byte),
		base:    time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Add adds a commit. Commits are timestamped one minute apart in insertion order.
func (g *FakeGraph) Add(node string, parents ...string) *git.CommitInfo {
	info := &git.CommitInfo{
		Node:        node,
		Author:      "Test User",
		Email:       "test@example.com",
		Description: node,
		When:        g.base.Add(time.Duration(len(g.commits)) * time.Minute),
		Parents:     parents,
	}
	g.commits[node] = info
	g.order = nil
	return info
}

// Chain adds nodes as a linear history on top of parent ("" for a root) and returns the last node
func (g *FakeGraph) Chain(parent string, nodes ...string) string {
	for _, node := range nodes {
		if parent == "" {
			g.Add(node)
		} else {
			g.Add(node, parent)
		}
		parent = node
	}
	return parent
}

// SetFile records the contents of path at node
func (g *FakeGraph) SetFile(node, path, contents string) {
	if g.files[node] == nil {
		g.files[node] = make(map[string][]byte)
	}
	g.files[node][path] = []byte(contents)
}

// HasNode matches node ids exactly, never by prefix
func (g *FakeGraph) HasNode(node string) bool {
	_, ok := g.commits[node]
	return ok
}

// Resolve implements git.Graph
func (g *FakeGraph) Resolve(id string) (string, error) {
	if _, ok := g.commits[id]; ok {
		return id, nil
	}
	var match string
	for node := range g.commits {
		if len(id) >= 4 && strings.HasPrefix(node, id) {
			if match != "" {
				return "", fmt.Errorf("%w: ambiguous %s", git.ErrUnknownRevision, id)
			}
			match = node
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", git.ErrUnknownRevision, id)
	}
	return match, nil
}

// Has implements git.Graph
func (g *FakeGraph) Has(id string) bool {
	_, err := g.Resolve(id)
	return err == nil
}

// Commit implements git.Graph
func (g *FakeGraph) Commit(id string) (*git.CommitInfo, error) {
	node, err := g.Resolve(id)
	if err != nil {
		return nil, err
	}
	return g.commits[node], nil
}

func (g *FakeGraph) parents(node string) ([]string, error) {
	info, ok := g.commits[node]
	if !ok {
		return nil, fmt.Errorf("%w: %s", git.ErrUnknownRevision, node)
	}
	return info.Parents, nil
}

// Ancestors implements git.Graph
func (g *FakeGraph) Ancestors(heads []string, inclusive bool) (map[string]struct{}, error) {
	return git.Walk(heads, inclusive, nil, g.parents)
}

// FindMissing implements git.Graph
func (g *FakeGraph) FindMissing(common map[string]struct{}, heads []string) (map[string]struct{}, error) {
	return git.Walk(heads, true, func(node string) bool {
		_, ok := common[node]
		return ok
	}, g.parents)
}

// FileAt implements git.Graph
func (g *FakeGraph) FileAt(id, path string) ([]byte, error) {
	node, err := g.Resolve(id)
	if err != nil {
		return nil, err
	}
	data, ok := g.files[node][path]
	if !ok {
		return nil, fmt.Errorf("%s at %s: %w", path, node, os.ErrNotExist)
	}
	return data, nil
}

// All implements git.Graph
func (g *FakeGraph) All() ([]string, error) {
	if g.order == nil {
		g.order = git.TopoOrder(g.commits)
	}
	return append([]string(nil), g.order...), nil
}

// Position implements git.Graph
func (g *FakeGraph) Position(id string) int {
	all, _ := g.All()
	for i, node := range all {
		if node == id {
			return i
		}
	}
	return -1
}
