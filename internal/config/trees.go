package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

const (
	treesFileName = "pushlog_trees.yaml"

	// DefaultBranch is the branch whose head defines a tree's content
	DefaultBranch = "default"

	// ReleasesGroup is the alias group naming the release trees
	ReleasesGroup = "releases"

	// TryTree never carries a pushlog worth indexing
	TryTree = "try"
)

// Tree is a named remote repository identity
type Tree struct {
	Name    string   `yaml:"name"`
	URI     string   `yaml:"uri"`
	Pushlog string   `yaml:"pushlog,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
	Branch  string   `yaml:"branch,omitempty"`
}

// PushlogURI returns the URI serving the pushlog fetch protocol
func (t Tree) PushlogURI() string {
	if t.Pushlog != "" {
		return t.Pushlog
	}
	return t.URI
}

// HeadBranch returns the branch that represents the tree's current head
func (t Tree) HeadBranch() string {
	if t.Branch != "" {
		return t.Branch
	}
	return DefaultBranch
}

// TreesFile is the on-disk shape of the tree registry override
type TreesFile struct {
	Trees  []Tree              `yaml:"trees"`
	Groups map[string][]string `yaml:"groups,omitempty"`
}

// Trees is the registry of known trees and alias groups
type Trees struct {
	byName map[string]Tree
	groups map[string][]string
}

const hgBase = "https://hg.mozilla.org/"

// DefaultTrees returns the built-in registry
func DefaultTrees() *Trees {
	file := TreesFile{
		Trees: []Tree{
			{Name: "central", URI: hgBase + "mozilla-central", Aliases: []string{"mozilla-central", "mc", "m-c"}},
			{Name: "inbound", URI: hgBase + "integration/mozilla-inbound", Aliases: []string{"mozilla-inbound", "mi", "m-i"}},
			{Name: "autoland", URI: hgBase + "integration/autoland", Aliases: []string{"al"}},
			{Name: "fx-team", URI: hgBase + "integration/fx-team", Aliases: []string{"fx"}},
			{Name: "aurora", URI: hgBase + "releases/mozilla-aurora", Aliases: []string{"mozilla-aurora", "ma", "m-a"}},
			{Name: "beta", URI: hgBase + "releases/mozilla-beta", Aliases: []string{"mozilla-beta", "mb", "m-b"}},
			{Name: "release", URI: hgBase + "releases/mozilla-release", Aliases: []string{"mozilla-release", "mr", "m-r"}},
			{Name: "esr60", URI: hgBase + "releases/mozilla-esr60"},
			{Name: "esr52", URI: hgBase + "releases/mozilla-esr52"},
			{Name: TryTree, URI: hgBase + "try"},
		},
		Groups: map[string][]string{
			ReleasesGroup: {"aurora", "beta", "release", "esr60", "esr52"},
			"integration": {"inbound", "autoland", "fx-team"},
			"esr":         {"esr60", "esr52"},
		},
	}
	return newTrees(file)
}

func newTrees(file TreesFile) *Trees {
	t := &Trees{
		byName: make(map[string]Tree, len(file.Trees)),
		groups: make(map[string][]string, len(file.Groups)),
	}
	for _, tree := range file.Trees {
		t.byName[tree.Name] = tree
	}
	for name, members := range file.Groups {
		t.groups[name] = append([]string(nil), members...)
	}
	return t
}

// LoadTrees returns the built-in registry merged with .git/pushlog_trees.yaml, if present.
// Trees in the file replace built-in trees of the same name.
func LoadTrees(repoRoot string) (*Trees, error) {
	trees := DefaultTrees()
	if repoRoot == "" {
		return trees, nil
	}

	data, err := os.ReadFile(filepath.Join(repoRoot, ".git", treesFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return trees, nil
		}
		return nil, fmt.Errorf("failed to read tree registry: %w", err)
	}

	var file TreesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tree registry: %w", err)
	}

	for _, tree := range file.Trees {
		if tree.Name == "" || tree.URI == "" {
			return nil, fmt.Errorf("tree registry entries need a name and a uri")
		}
		trees.byName[tree.Name] = tree
	}
	for name, members := range file.Groups {
		trees.groups[name] = append([]string(nil), members...)
	}
	return trees, nil
}

// Names returns all tree names, sorted
func (t *Trees) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a tree by canonical name
func (t *Trees) Get(name string) (Tree, bool) {
	tree, ok := t.byName[name]
	return tree, ok
}

// Group returns the members of an alias group
func (t *Trees) Group(name string) []string {
	return t.groups[name]
}

// IsRelease reports whether a tree is a member of the releases group.
// extra lists additional release trees from the repository config.
func (t *Trees) IsRelease(name string, extra ...string) bool {
	for _, member := range t.groups[ReleasesGroup] {
		if member == name {
			return true
		}
	}
	for _, member := range extra {
		if member == name {
			return true
		}
	}
	return false
}

// Aliases returns the single-tree aliases of a tree, sorted
func (t *Trees) Aliases(name string) []string {
	tree, ok := t.byName[name]
	if !ok {
		return nil
	}
	aliases := append([]string(nil), tree.Aliases...)
	sort.Strings(aliases)
	return aliases
}

// Lookup resolves a canonical name or a single-tree alias
func (t *Trees) Lookup(name string) (Tree, bool) {
	if tree, ok := t.byName[name]; ok {
		return tree, true
	}
	lower := strings.ToLower(name)
	for _, treeName := range t.Names() {
		tree := t.byName[treeName]
		for _, alias := range tree.Aliases {
			if strings.ToLower(alias) == lower {
				return tree, true
			}
		}
	}
	return Tree{}, false
}

// Expand resolves a name, alias or group to canonical tree names
func (t *Trees) Expand(name string) ([]string, error) {
	if tree, ok := t.Lookup(name); ok {
		return []string{tree.Name}, nil
	}
	if members, ok := t.groups[name]; ok {
		return append([]string(nil), members...), nil
	}
	return nil, pushlogerrors.NewUnknownTreeError(name)
}

// TreeForURI maps a remote URI back to the tree it serves
func (t *Trees) TreeForURI(uri string) (Tree, bool) {
	want := normalizeURI(uri)
	if want == "" {
		return Tree{}, false
	}
	for _, name := range t.Names() {
		tree := t.byName[name]
		if normalizeURI(tree.URI) == want || (tree.Pushlog != "" && normalizeURI(tree.Pushlog) == want) {
			return tree, true
		}
	}
	return Tree{}, false
}

// normalizeURI reduces a URI to host and path so http, https and ssh forms compare equal
func normalizeURI(uri string) string {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || u.Host == "" {
		return ""
	}
	path := strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), ".git")
	return strings.ToLower(u.Hostname()) + path
}
