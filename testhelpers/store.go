package testhelpers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pushlog.dev/pushlog/internal/store"
)

// OpenStore opens an index in a temporary directory that is closed when the test ends
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), store.FileName))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// RecordPush stores a single push of nodes on tree
func RecordPush(t *testing.T, s *store.Store, tree string, id int64, user string, when time.Time, nodes ...string) {
	t.Helper()
	err := s.AddPushes(context.Background(), tree, []store.Push{{ID: id, User: user, When: when, Nodes: nodes}})
	require.NoError(t, err)
}

// SetRefs stores remote refs
func SetRefs(t *testing.T, s *store.Store, refs map[string]string) {
	t.Helper()
	require.NoError(t, s.ApplyRefChanges(context.Background(), refs, nil))
}
