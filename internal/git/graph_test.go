package git

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// a - b - c - e
//      \     /
//        d --
func diamond() map[string]*CommitInfo {
	base := time.Unix(1000, 0)
	return map[string]*CommitInfo{
		"a": {Node: "a", When: base},
		"b": {Node: "b", When: base.Add(time.Minute), Parents: []string{"a"}},
		"c": {Node: "c", When: base.Add(3 * time.Minute), Parents: []string{"b"}},
		"d": {Node: "d", When: base.Add(2 * time.Minute), Parents: []string{"b"}},
		"e": {Node: "e", When: base.Add(4 * time.Minute), Parents: []string{"c", "d"}},
	}
}

func parentsOf(nodes map[string]*CommitInfo) func(string) ([]string, error) {
	return func(node string) ([]string, error) {
		info, ok := nodes[node]
		if !ok {
			return nil, errors.New("missing " + node)
		}
		return info.Parents, nil
	}
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func TestWalk(t *testing.T) {
	t.Parallel()
	nodes := diamond()

	t.Run("inclusive ancestors", func(t *testing.T) {
		t.Parallel()
		got, err := Walk([]string{"c"}, true, nil, parentsOf(nodes))
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"a", "b", "c"}, keys(got))
	})

	t.Run("exclusive ancestors", func(t *testing.T) {
		t.Parallel()
		got, err := Walk([]string{"e"}, false, nil, parentsOf(nodes))
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"a", "b", "c", "d"}, keys(got))
	})

	t.Run("stop set prunes traversal", func(t *testing.T) {
		t.Parallel()
		common := map[string]bool{"a": true, "b": true, "c": true}
		got, err := Walk([]string{"e"}, true, func(n string) bool { return common[n] }, parentsOf(nodes))
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"d", "e"}, keys(got))
	})

	t.Run("propagates lookup errors", func(t *testing.T) {
		t.Parallel()
		_, err := Walk([]string{"zz"}, true, nil, parentsOf(nodes))
		require.Error(t, err)
	})
}

func TestTopoOrder(t *testing.T) {
	t.Parallel()

	order := TopoOrder(diamond())
	require.Equal(t, []string{"a", "b", "d", "c", "e"}, order)

	t.Run("ties fall back to node id", func(t *testing.T) {
		t.Parallel()
		when := time.Unix(0, 0)
		order := TopoOrder(map[string]*CommitInfo{
			"y": {Node: "y", When: when},
			"x": {Node: "x", When: when},
		})
		require.Equal(t, []string{"x", "y"}, order)
	})
}

func TestCommitInfoUser(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Alice <alice@example.com>", (&CommitInfo{Author: "Alice", Email: "alice@example.com"}).User())
	require.Equal(t, "Alice", (&CommitInfo{Author: "Alice"}).User())
}
