package provenance

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"
	// Embedded zone data so daily build dates do not depend on the host
	_ "time/tzdata"

	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/store"
)

const (
	// NightlyTree is the tree nightly builds are made from
	NightlyTree = "central"
	// AuroraTree is the tree aurora builds are made from
	AuroraTree = "aurora"

	dailyBuildZone = "America/Los_Angeles"
	dailyBuildHour = 3
)

// Store is the read side of the local index used for provenance queries
type Store interface {
	PushesForChangeset(ctx context.Context, node string) ([]store.PushRef, error)
	IsPushHead(ctx context.Context, node, tree string) (bool, error)
	RemoteRefs(ctx context.Context, prefix string) (map[string]string, error)
}

// Options tunes an Index
type Options struct {
	// MilestonePath is the file holding the release milestone of a revision
	MilestonePath string
	// TreeherderURL is the base URL used for build links
	TreeherderURL string
	// ReleaseTrees extends the registry's releases group
	ReleaseTrees []string
}

// Index answers provenance questions. A nil store means the local index is
// disabled; every query then reports no data.
type Index struct {
	store Store
	graph git.Graph
	trees *config.Trees
	opts  Options

	mu        sync.Mutex
	versions  map[string]map[string]ReleaseVersion
	ancestors map[string]map[string]map[string]struct{}
}

// New creates an Index
func New(s Store, graph git.Graph, trees *config.Trees, opts Options) *Index {
	if opts.MilestonePath == "" {
		opts.MilestonePath = config.DefaultMilestonePath
	}
	if opts.TreeherderURL == "" {
		opts.TreeherderURL = config.DefaultTreeherderURL
	}
	if trees == nil {
		trees = config.DefaultTrees()
	}
	return &Index{store: s, graph: graph, trees: trees, opts: opts}
}

// Enabled reports whether the local index is available
func (x *Index) Enabled() bool {
	return x.store != nil
}

// Invalidate drops memoized release data. Call it after remote refs change.
func (x *Index) Invalidate() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.versions = nil
	x.ancestors = nil
}

// Pushes returns every recorded push of node, trees in discovery order
func (x *Index) Pushes(ctx context.Context, node string) ([]store.PushRef, error) {
	if x.store == nil {
		return nil, nil
	}
	return x.store.PushesForChangeset(ctx, node)
}

// FirstPush returns the first recorded push of node
func (x *Index) FirstPush(ctx context.Context, node string) (store.PushRef, bool, error) {
	pushes, err := x.Pushes(ctx, node)
	if err != nil || len(pushes) == 0 {
		return store.PushRef{}, false, err
	}
	return pushes[0], true, nil
}

// FirstPushTo returns the first recorded push of node to tree
func (x *Index) FirstPushTo(ctx context.Context, node, tree string) (store.PushRef, bool, error) {
	pushes, err := x.Pushes(ctx, node)
	if err != nil {
		return store.PushRef{}, false, err
	}
	for _, p := range pushes {
		if p.Tree == tree {
			return p, true, nil
		}
	}
	return store.PushRef{}, false, nil
}

// IsPushHead reports whether node was the head of a push, on tree when tree is not empty
func (x *Index) IsPushHead(ctx context.Context, node, tree string) (bool, error) {
	if x.store == nil {
		return false, nil
	}
	return x.store.IsPushHead(ctx, node, tree)
}

// ReleaseMilestone reads the milestone file at the head of the first push of
// node to tree and returns its first meaningful line.
func (x *Index) ReleaseMilestone(ctx context.Context, node, tree string) (string, bool, error) {
	push, ok, err := x.FirstPushTo(ctx, node, tree)
	if err != nil || !ok {
		return "", false, err
	}
	return x.Milestone(push.Head)
}

// Milestone returns the release milestone recorded at revision
func (x *Index) Milestone(revision string) (string, bool, error) {
	data, err := x.graph.FileAt(revision, x.opts.MilestonePath)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, git.ErrUnknownRevision) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	milestone, ok := ParseMilestone(data)
	return milestone, ok, nil
}

// ParseMilestone returns the first line of data that is not blank and not a comment
func ParseMilestone(data []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		return strings.TrimRight(line, "\r"), true
	}
	return "", false
}

// NextDailyRelease returns the date, as YYYY-MM-DD, of the first daily build
// after the first push of node to tree. Daily builds start at 03:00 Pacific.
func (x *Index) NextDailyRelease(ctx context.Context, node, tree string) (string, bool, error) {
	push, ok, err := x.FirstPushTo(ctx, node, tree)
	if err != nil || !ok {
		return "", false, err
	}
	date, err := DailyBuildDate(push.When)
	if err != nil {
		return "", false, err
	}
	return date, true, nil
}

// DailyBuildDate returns the date of the first daily build started after when
func DailyBuildDate(when time.Time) (string, error) {
	loc, err := time.LoadLocation(dailyBuildZone)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", dailyBuildZone, err)
	}
	local := when.In(loc)
	if local.Hour() >= dailyBuildHour {
		local = local.AddDate(0, 0, 1)
	}
	return local.Format(time.DateOnly), nil
}

// TreeherderURL links to the builds of a push head on tree. It returns an
// empty string for trees outside the registry.
func (x *Index) TreeherderURL(tree, head string) string {
	t, ok := x.trees.Get(tree)
	if !ok {
		return ""
	}
	u, err := url.Parse(t.URI)
	if err != nil || u.Path == "" {
		return ""
	}
	repo := path.Base(strings.TrimSuffix(u.Path, "/"))
	return fmt.Sprintf("%s/#/jobs?repo=%s&revision=%s",
		strings.TrimSuffix(x.opts.TreeherderURL, "/"), url.QueryEscape(repo), head)
}

// IsReleaseTree reports whether tree is a release tree
func (x *Index) IsReleaseTree(tree string) bool {
	return x.trees.IsRelease(tree, x.opts.ReleaseTrees...)
}
