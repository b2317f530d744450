package provenance

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pushlog.dev/pushlog/internal/git"
)

const (
	// BetaKind selects beta releases
	BetaKind = "beta"
	// ReleaseKind selects release channel releases
	ReleaseKind = "release"

	versionRefPrefix = "GECKO"
	versionRefSuffix = "RELBRANCH"
)

// ReleaseVersion is a release parsed from a relbranch ref such as
// beta/GECKO450b3_2016032117_RELBRANCH
type ReleaseVersion struct {
	// Version is the dotted form, e.g. 45.0b3
	Version string
	Ref     string
	Node    string
	Major   string
	Minor   string
	// Marker is "b" for betas
	Marker string
	After  string
}

// ParseReleaseRef parses the branch part of a relbranch ref
func ParseReleaseRef(branch string) (ReleaseVersion, bool) {
	if !strings.HasPrefix(branch, versionRefPrefix) || !strings.HasSuffix(branch, versionRefSuffix) {
		return ReleaseVersion{}, false
	}
	parts := strings.Split(branch, "_")
	if len(parts) != 3 {
		return ReleaseVersion{}, false
	}

	v := ReleaseVersion{Ref: branch}
	version := strings.TrimPrefix(parts[0], versionRefPrefix)
	if before, after, found := strings.Cut(version, "b"); found {
		v.Marker = "b"
		version, v.After = before, after
	}

	switch {
	case len(version) > 2:
		v.Major, v.Minor = version[:2], version[2:]
	case len(version) == 2:
		v.Major, v.Minor = version[:1], version[1:]
	default:
		return ReleaseVersion{}, false
	}

	v.Version = v.Major + "." + v.Minor + v.Marker + v.After
	return v, true
}

// ReleaseVersions returns the versions of kind found among the stored remote refs
func (x *Index) ReleaseVersions(ctx context.Context, kind string) (map[string]ReleaseVersion, error) {
	x.mu.Lock()
	if cached, ok := x.versions[kind]; ok {
		x.mu.Unlock()
		return cached, nil
	}
	x.mu.Unlock()

	versions := make(map[string]ReleaseVersion)
	if x.store == nil {
		return versions, nil
	}

	prefix := kind + "/"
	refs, err := x.store.RemoteRefs(ctx, prefix)
	if err != nil {
		return nil, err
	}
	for name, node := range refs {
		v, ok := ParseReleaseRef(strings.TrimPrefix(name, prefix))
		if !ok {
			continue
		}
		v.Node = node
		versions[v.Version] = v
	}

	x.mu.Lock()
	if x.versions == nil {
		x.versions = make(map[string]map[string]ReleaseVersion)
	}
	x.versions[kind] = versions
	x.mu.Unlock()
	return versions, nil
}

// SortedVersions returns the version strings of versions in ascending string order
func SortedVersions(versions map[string]ReleaseVersion) []string {
	keys := make([]string, 0, len(versions))
	for k := range versions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EarliestVersionAncestors partitions history by the version that introduced
// each revision. Versions are visited in ascending string order and each one
// receives the ancestors of its head not already claimed by an earlier
// version. Versions whose head is not present locally are skipped.
func EarliestVersionAncestors(graph git.Graph, versions map[string]ReleaseVersion) (map[string]map[string]struct{}, error) {
	result := make(map[string]map[string]struct{}, len(versions))
	seen := make(map[string]struct{})

	for _, version := range SortedVersions(versions) {
		head, err := graph.Resolve(versions[version].Node)
		if errors.Is(err, git.ErrUnknownRevision) {
			continue
		}
		if err != nil {
			return nil, err
		}

		introduced, err := graph.FindMissing(seen, []string{head})
		if err != nil {
			return nil, err
		}
		result[version] = introduced
		for node := range introduced {
			seen[node] = struct{}{}
		}
	}
	return result, nil
}

// VersionAncestors is EarliestVersionAncestors for the releases of kind,
// memoized until Invalidate.
func (x *Index) VersionAncestors(ctx context.Context, kind string) (map[string]map[string]struct{}, error) {
	x.mu.Lock()
	if cached, ok := x.ancestors[kind]; ok {
		x.mu.Unlock()
		return cached, nil
	}
	x.mu.Unlock()

	versions, err := x.ReleaseVersions(ctx, kind)
	if err != nil {
		return nil, err
	}
	partition, err := EarliestVersionAncestors(x.graph, versions)
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	if x.ancestors == nil {
		x.ancestors = make(map[string]map[string]map[string]struct{})
	}
	x.ancestors[kind] = partition
	x.mu.Unlock()
	return partition, nil
}

// FirstVersion returns the first release of kind that shipped node
func (x *Index) FirstVersion(ctx context.Context, node, kind string) (string, bool, error) {
	partition, err := x.VersionAncestors(ctx, kind)
	if err != nil {
		return "", false, err
	}
	for version, nodes := range partition {
		if _, ok := nodes[node]; ok {
			return version, true, nil
		}
	}
	return "", false, nil
}

// ReleasesContaining returns, in ascending order, the releases of kind whose
// head descends from node.
func (x *Index) ReleasesContaining(ctx context.Context, node, kind string) ([]string, error) {
	versions, err := x.ReleaseVersions(ctx, kind)
	if err != nil {
		return nil, err
	}

	var releases []string
	for _, version := range SortedVersions(versions) {
		head, err := x.graph.Resolve(versions[version].Node)
		if errors.Is(err, git.ErrUnknownRevision) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ancestors, err := x.graph.Ancestors([]string{head}, true)
		if err != nil {
			return nil, err
		}
		if _, ok := ancestors[node]; ok {
			releases = append(releases, version)
		}
	}
	return releases, nil
}
