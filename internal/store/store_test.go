package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func push(id int64, user string, nodes ...string) Push {
	return Push{ID: id, User: user, When: time.Unix(1000+id*100, 0), Nodes: nodes}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("applies pragmas", func(t *testing.T) {
		t.Parallel()
		s := createTestStore(t)
		require.NoError(t, s.verifyPragma("journal_mode", "wal"))
		require.NoError(t, s.verifyPragma("foreign_keys", "1"))
		require.NoError(t, s.verifyPragma("user_version", "1"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "test.db")
		s, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, s.AddPushes(context.Background(), "central", []Push{push(1, "alice", "aaaa")}))
		require.NoError(t, s.Close())

		s, err = Open(path)
		require.NoError(t, err)
		defer s.Close()
		id, ok, err := s.LastPushID(context.Background(), "central")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(1), id)
	})

	t.Run("corrupt database is a storage error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "test.db")
		require.NoError(t, os.WriteFile(path, []byte("this is not a database, not even close to one"), 0600))
		_, err := Open(path)
		require.ErrorIs(t, err, pushlogerrors.ErrStorage)
	})
}

func TestAddPushes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("last push id is absent for new trees", func(t *testing.T) {
		t.Parallel()
		s := createTestStore(t)
		_, ok, err := s.LastPushID(ctx, "central")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("stores pushes and membership", func(t *testing.T) {
		t.Parallel()
		s := createTestStore(t)
		require.NoError(t, s.AddPushes(ctx, "central", []Push{
			push(5, "alice", "aaaa"),
			push(6, "bob", "bbbb", "cccc"),
		}))

		id, ok, err := s.LastPushID(ctx, "central")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(6), id)

		refs, err := s.PushesForChangeset(ctx, "cccc")
		require.NoError(t, err)
		require.Len(t, refs, 1)
		require.Equal(t, int64(6), refs[0].ID)
		require.Equal(t, "bob", refs[0].User)
		require.Equal(t, "cccc", refs[0].Head)
		require.Equal(t, "central", refs[0].Tree)

		refs, err = s.PushesForChangeset(ctx, "bbbb")
		require.NoError(t, err)
		require.Len(t, refs, 1)
		require.Equal(t, "cccc", refs[0].Head)
	})

	t.Run("stored pushes are never rewritten", func(t *testing.T) {
		t.Parallel()
		s := createTestStore(t)
		require.NoError(t, s.AddPushes(ctx, "central", []Push{push(1, "alice", "aaaa")}))
		require.NoError(t, s.AddPushes(ctx, "central", []Push{push(1, "mallory", "ffff")}))

		refs, err := s.PushesForChangeset(ctx, "aaaa")
		require.NoError(t, err)
		require.Len(t, refs, 1)
		require.Equal(t, "alice", refs[0].User)

		refs, err = s.PushesForChangeset(ctx, "ffff")
		require.NoError(t, err)
		require.Empty(t, refs)
	})

	t.Run("orders by tree discovery then push id", func(t *testing.T) {
		t.Parallel()
		s := createTestStore(t)
		require.NoError(t, s.AddPushes(ctx, "inbound", []Push{push(9, "a", "aaaa")}))
		require.NoError(t, s.AddPushes(ctx, "central", []Push{push(2, "b", "aaaa")}))
		require.NoError(t, s.AddPushes(ctx, "inbound", []Push{push(3, "c", "aaaa")}))

		refs, err := s.PushesForChangeset(ctx, "aaaa")
		require.NoError(t, err)
		require.Len(t, refs, 3)
		require.Equal(t, []string{"inbound", "inbound", "central"}, []string{refs[0].Tree, refs[1].Tree, refs[2].Tree})
		require.Equal(t, []int64{3, 9, 2}, []int64{refs[0].ID, refs[1].ID, refs[2].ID})
	})
}

func TestTreePushHeads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.AddPushes(ctx, "central", []Push{
		push(7, "a", "1111", "2222"),
		push(3, "b", "3333"),
		push(5, "c", "4444"),
	}))
	require.NoError(t, s.AddPushes(ctx, "beta", []Push{push(1, "d", "5555")}))

	var ids []int64
	var heads []string
	for head, err := range s.TreePushHeads(ctx, "central") {
		require.NoError(t, err)
		ids = append(ids, head.ID)
		heads = append(heads, head.Head)
	}
	require.Equal(t, []int64{3, 5, 7}, ids)
	require.Equal(t, []string{"3333", "4444", "2222"}, heads)

	t.Run("stops early without leaking the cursor", func(t *testing.T) {
		for range s.TreePushHeads(ctx, "central") {
			break
		}
		ok, err := s.IsPushHead(ctx, "5555", "beta")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("push head membership", func(t *testing.T) {
		ok, err := s.IsPushHead(ctx, "2222", "")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.IsPushHead(ctx, "2222", "beta")
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = s.IsPushHead(ctx, "1111", "")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestBugs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.AssociateBugs(ctx, []int{784841}, "deadbeef"))
	require.NoError(t, s.AssociateBugs(ctx, []int{784841}, "deadbeef"))
	require.NoError(t, s.AssociateBugsBatch(ctx, map[string][]int{"cafebabe": {784841, 1}}))

	nodes, err := s.ChangesetsWithBug(ctx, 784841)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Contains(t, nodes, "deadbeef")
	require.Contains(t, nodes, "cafebabe")

	require.NoError(t, s.AddPushes(ctx, "central", []Push{push(1, "a", "deadbeef")}))
	require.NoError(t, s.WipeBugs(ctx))

	nodes, err = s.ChangesetsWithBug(ctx, 784841)
	require.NoError(t, err)
	require.Empty(t, nodes)

	// Bug wipes leave pushes alone
	_, ok, err := s.LastPushID(ctx, "central")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWipePushlog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.AddPushes(ctx, "central", []Push{push(1, "a", "aaaa")}))
	require.NoError(t, s.AddPushes(ctx, "beta", []Push{push(1, "a", "aaaa")}))
	require.NoError(t, s.AssociateBugs(ctx, []int{5}, "aaaa"))
	require.NoError(t, s.WipePushlog(ctx))

	_, ok, err := s.LastPushID(ctx, "central")
	require.NoError(t, err)
	require.False(t, ok)

	refs, err := s.PushesForChangeset(ctx, "aaaa")
	require.NoError(t, err)
	require.Empty(t, refs)

	nodes, err := s.ChangesetsWithBug(ctx, 5)
	require.NoError(t, err)
	require.Contains(t, nodes, "aaaa")

	// Discovery order restarts
	require.NoError(t, s.AddPushes(ctx, "beta", []Push{push(1, "a", "aaaa")}))
	require.NoError(t, s.AddPushes(ctx, "central", []Push{push(1, "a", "aaaa")}))
	refs, err = s.PushesForChangeset(ctx, "aaaa")
	require.NoError(t, err)
	require.Equal(t, []string{"beta", "central"}, []string{refs[0].Tree, refs[1].Tree})
}

func TestRemoteRefs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.ApplyRefChanges(ctx, map[string]string{
		"central/default": "aaaa",
		"beta/default":    "bbbb",
	}, nil))
	require.NoError(t, s.ApplyRefChanges(ctx, map[string]string{"central/default": "cccc"}, []string{"beta/default"}))

	refs, err := s.RemoteRefs(ctx, "")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"central/default": "cccc"}, refs)

	refs, err = s.RemoteRefs(ctx, "beta/")
	require.NoError(t, err)
	require.Empty(t, refs)

	node, ok, err := s.RemoteRef(ctx, "central/default")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "cccc", node)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.Refs)
}

func TestConcurrentReaders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	writer, err := Open(path)
	require.NoError(t, err)
	defer writer.Close()
	reader, err := Open(path)
	require.NoError(t, err)
	defer reader.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(1); i <= 20; i++ {
			if err := writer.AddPushes(ctx, "central", []Push{push(i, "a", "aaaa")}); err != nil {
				t.Errorf("add pushes: %v", err)
				return
			}
		}
	}()

	for range 20 {
		refs, err := reader.PushesForChangeset(ctx, "aaaa")
		require.NoError(t, err)
		for i := 1; i < len(refs); i++ {
			require.Less(t, refs[i-1].ID, refs[i].ID)
		}
	}
	wg.Wait()

	id, _, err := reader.LastPushID(ctx, "central")
	require.NoError(t, err)
	require.Equal(t, int64(20), id)
}
