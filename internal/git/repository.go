package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository wraps a go-git repository and implements Graph
type Repository struct {
	repo *gogit.Repository
	path string

	// Synchronize go-git operations to prevent concurrent packfile access
	mu sync.Mutex

	commits  map[string]*CommitInfo
	order    []string
	position map[string]int
}

var _ Graph = (*Repository)(nil)

// OpenRepository opens a git repository at the given path
func OpenRepository(path string) (*Repository, error) {
	// Resolve to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	root := absPath
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repository{
		repo:    repo,
		path:    root,
		commits: make(map[string]*CommitInfo),
	}, nil
}

// GetRepoRoot returns the root directory of the repository
func (r *Repository) GetRepoRoot() string {
	return r.path
}

// Invalidate drops cached graph state; call after new revisions arrive
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Reopen so packfiles written by another process are visible
	if repo, err := gogit.PlainOpenWithOptions(r.path, &gogit.PlainOpenOptions{DetectDotGit: true}); err == nil {
		r.repo = repo
	}
	r.order = nil
	r.position = nil
}

// Resolve implements Graph
func (r *Repository) Resolve(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := r.resolveLocked(id)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (r *Repository) resolveLocked(id string) (plumbing.Hash, error) {
	if plumbing.IsHash(id) {
		hash := plumbing.NewHash(id)
		if _, err := r.repo.CommitObject(hash); err == nil {
			return hash, nil
		}
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrUnknownRevision, id)
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(id))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrUnknownRevision, id)
	}
	if _, err := r.repo.CommitObject(*hash); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrUnknownRevision, id)
	}
	return *hash, nil
}

// Has implements Graph
func (r *Repository) Has(id string) bool {
	_, err := r.Resolve(id)
	return err == nil
}

// HasNode reports whether node is the full lowercase hex id of a local
// commit. Unlike Has, revision expressions and prefixes never match.
func (r *Repository) HasNode(node string) bool {
	if !plumbing.IsHash(node) || plumbing.NewHash(node).String() != node {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.repo.CommitObject(plumbing.NewHash(node))
	return err == nil
}

// Commit implements Graph
func (r *Repository) Commit(id string) (*CommitInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.commits[id]; ok {
		return info, nil
	}
	hash, err := r.resolveLocked(id)
	if err != nil {
		return nil, err
	}
	return r.commitLocked(hash)
}

func (r *Repository) commitLocked(hash plumbing.Hash) (*CommitInfo, error) {
	if info, ok := r.commits[hash.String()]; ok {
		return info, nil
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRevision, hash)
		}
		return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
	}

	info := &CommitInfo{
		Node:        hash.String(),
		Author:      commit.Author.Name,
		Email:       commit.Author.Email,
		Description: strings.TrimRight(commit.Message, "\n"),
		When:        commit.Author.When,
	}
	for _, p := range commit.ParentHashes {
		info.Parents = append(info.Parents, p.String())
	}
	r.commits[info.Node] = info
	return info, nil
}

func (r *Repository) parentsLocked(node string) ([]string, error) {
	info, err := r.commitLocked(plumbing.NewHash(node))
	if err != nil {
		return nil, err
	}
	return info.Parents, nil
}

// Ancestors implements Graph
func (r *Repository) Ancestors(heads []string, inclusive bool) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Walk(heads, inclusive, nil, r.parentsLocked)
}

// FindMissing implements Graph
func (r *Repository) FindMissing(common map[string]struct{}, heads []string) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stop := func(node string) bool {
		_, ok := common[node]
		return ok
	}
	return Walk(heads, true, stop, r.parentsLocked)
}

// IsAncestor checks if ancestor is reachable from descendant (inclusive)
func (r *Repository) IsAncestor(ancestor, descendant string) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	ancestors, err := r.Ancestors([]string{descendant}, false)
	if err != nil {
		return false, err
	}
	_, ok := ancestors[ancestor]
	return ok, nil
}

// FileAt implements Graph
func (r *Repository) FileAt(id, path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := r.resolveLocked(id)
	if err != nil {
		return nil, err
	}
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
	}
	file, err := commit.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, fmt.Errorf("%s at %s: %w", path, hash, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, hash, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, hash, err)
	}
	return []byte(contents), nil
}

// All implements Graph
func (r *Repository) All() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadOrderLocked(); err != nil {
		return nil, err
	}
	return append([]string(nil), r.order...), nil
}

// Position implements Graph
func (r *Repository) Position(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadOrderLocked(); err != nil {
		return -1
	}
	if pos, ok := r.position[id]; ok {
		return pos
	}
	return -1
}

func (r *Repository) loadOrderLocked() error {
	if r.order != nil {
		return nil
	}

	heads, err := r.refHeadsLocked()
	if err != nil {
		return err
	}

	nodes := make(map[string]*CommitInfo)
	queue := heads
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if _, ok := nodes[node]; ok {
			continue
		}
		info, err := r.commitLocked(plumbing.NewHash(node))
		if err != nil {
			return err
		}
		nodes[node] = info
		queue = append(queue, info.Parents...)
	}

	r.order = TopoOrder(nodes)
	r.position = make(map[string]int, len(r.order))
	for i, node := range r.order {
		r.position[node] = i
	}
	return nil
}

// refHeadsLocked returns the commit every non-symbolic reference points to
func (r *Repository) refHeadsLocked() ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to get references: %w", err)
	}

	seen := make(map[string]bool)
	var heads []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		hash := ref.Hash()
		if ref.Name().IsTag() {
			if tag, err := r.repo.TagObject(hash); err == nil {
				commit, err := tag.Commit()
				if err != nil {
					return nil
				}
				hash = commit.Hash
			}
		}
		if _, err := r.repo.CommitObject(hash); err != nil {
			return nil
		}
		if !seen[hash.String()] {
			seen[hash.String()] = true
			heads = append(heads, hash.String())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}
	return heads, nil
}

// LocalBranches maps each local branch to the commit it points at
func (r *Repository) LocalBranches() (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	branches := make(map[string]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches[ref.Name().Short()] = ref.Hash().String()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}
	return branches, nil
}

// RemoteURL returns the first URL of a configured remote
func (r *Repository) RemoteURL(name string) (string, bool) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", false
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", false
	}
	return urls[0], true
}

// Identity returns the configured git user as "Name <email>"
func (r *Repository) Identity() string {
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return ""
	}
	switch {
	case cfg.User.Name != "" && cfg.User.Email != "":
		return cfg.User.Name + " <" + cfg.User.Email + ">"
	case cfg.User.Name != "":
		return cfg.User.Name
	default:
		return cfg.User.Email
	}
}
