package git

import (
	"errors"
	"time"
)

// ErrUnknownRevision indicates an identifier that does not name a local revision
var ErrUnknownRevision = errors.New("unknown revision")

// CommitInfo is the subset of a revision the provenance code needs
type CommitInfo struct {
	Node        string
	Author      string
	Email       string
	Description string
	When        time.Time
	Parents     []string
}

// User returns the author in "Name <email>" form
func (c *CommitInfo) User() string {
	if c.Email == "" {
		return c.Author
	}
	return c.Author + " <" + c.Email + ">"
}

// Graph is the revision DAG of the local repository.
// Identifiers are full lowercase hex strings once resolved.
type Graph interface {
	// Resolve turns any revision expression into a full hex id
	Resolve(id string) (string, error)
	Has(id string) bool
	Commit(id string) (*CommitInfo, error)
	// Ancestors returns every ancestor of heads, including heads themselves when inclusive
	Ancestors(heads []string, inclusive bool) (map[string]struct{}, error)
	// FindMissing returns the ancestors of heads (inclusive) that are not in common.
	// common must be closed under ancestry, as returned by Ancestors.
	FindMissing(common map[string]struct{}, heads []string) (map[string]struct{}, error)
	// FileAt returns the contents of path at revision id
	FileAt(id, path string) ([]byte, error)
	// All returns every revision reachable from a reference, parents before children
	All() ([]string, error)
	// Position returns the index of id in All, or -1
	Position(id string) int
}

// Walk visits id and all of its ancestors breadth first, skipping nodes for
// which stop returns true. parents supplies the edges.
func Walk(heads []string, inclusive bool, stop func(string) bool, parents func(string) ([]string, error)) (map[string]struct{}, error) {
	result := make(map[string]struct{})
	visited := make(map[string]bool)

	var queue []string
	for _, head := range heads {
		if stop != nil && stop(head) {
			continue
		}
		if inclusive {
			queue = append(queue, head)
			continue
		}
		ps, err := parents(head)
		if err != nil {
			return nil, err
		}
		queue = append(queue, ps...)
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if visited[node] || (stop != nil && stop(node)) {
			continue
		}
		visited[node] = true
		result[node] = struct{}{}

		ps, err := parents(node)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			if !visited[p] {
				queue = append(queue, p)
			}
		}
	}

	return result, nil
}

// TopoOrder sorts nodes so parents come before children. Among nodes that are
// ready at the same time the older commit comes first, then the smaller id.
func TopoOrder(nodes map[string]*CommitInfo) []string {
	children := make(map[string][]string, len(nodes))
	pending := make(map[string]int, len(nodes))
	var ready []string

	for node, info := range nodes {
		count := 0
		for _, p := range info.Parents {
			if _, ok := nodes[p]; ok {
				children[p] = append(children[p], node)
				count++
			}
		}
		pending[node] = count
		if count == 0 {
			ready = append(ready, node)
		}
	}

	less := func(a, b string) bool {
		ta, tb := nodes[a].When, nodes[b].When
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a < b
	}

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if less(ready[i], ready[best]) {
				best = i
			}
		}
		node := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, node)

		for _, child := range children[node] {
			pending[child]--
			if pending[child] == 0 {
				ready = append(ready, child)
			}
		}
	}
	return order
}
