package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pushlog.dev/pushlog/internal/engine"
	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/revset"
	"pushlog.dev/pushlog/testhelpers"
)

func openEngine(t *testing.T, scene *testhelpers.Scene) (engine.Engine, *testhelpers.RecordingLogger) {
	t.Helper()
	log := &testhelpers.RecordingLogger{}
	eng, err := engine.Open(scene.Dir, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng, log
}

func TestPull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	up := testhelpers.NewUpstream(t, scene)
	eng, log := openEngine(t, scene)

	result, err := eng.Pull(ctx, "mc")
	require.NoError(t, err)
	require.Equal(t, "central", result.Tree)
	require.Equal(t, up.Repo.Dir, result.URI)
	require.Equal(t, up.Nodes, result.NewChangesets)
	require.Equal(t, map[string]string{"central/main": up.Nodes[1]}, result.Refs.Set)
	require.Empty(t, log.Warns)

	t.Run("associates bugs of new changesets", func(t *testing.T) {
		nodes, err := eng.ChangesetsWithBugs(ctx, []int{1000001})
		require.NoError(t, err)
		require.Equal(t, []string{up.Nodes[0]}, nodes)
	})

	t.Run("syncs the pushlog", func(t *testing.T) {
		push, ok, err := eng.Index().FirstPush(ctx, up.Nodes[1])
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "central", push.Tree)
		require.Equal(t, int64(2), push.ID)

		stats, err := eng.Stats(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, stats.Pushes)
		require.Equal(t, 1, stats.Refs)
	})

	t.Run("queries see the new data", func(t *testing.T) {
		result, err := eng.Query(ctx, []string{"firstpushtree(central)"}, []string{"bug(1000001)"})
		require.NoError(t, err)
		require.Equal(t, revset.RevSet{up.Nodes[1]}, result)
	})

	t.Run("pulling again only fetches new pushes", func(t *testing.T) {
		again, err := eng.Pull(ctx, "central")
		require.NoError(t, err)
		require.Empty(t, again.NewChangesets)
		require.True(t, again.Refs.Empty())
		require.Equal(t, []int64{0, 3}, up.Server.Requests())
	})
}

func TestPullUnknownSource(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	eng, _ := openEngine(t, scene)

	_, err := eng.Pull(context.Background(), "nowhere")
	require.ErrorIs(t, err, pushlogerrors.ErrUnknownTree)
}

func TestPullWithIndexDisabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	require.NoError(t, scene.WriteRepoConfig(`{"headless": true, "disableLocalDatabase": true}`))
	up := testhelpers.NewUpstream(t, scene)
	eng, _ := openEngine(t, scene)
	require.False(t, eng.IndexEnabled())

	result, err := eng.Pull(ctx, "central")
	require.NoError(t, err)
	require.Equal(t, up.Nodes, result.NewChangesets)
	require.Empty(t, up.Server.Requests())

	_, err = eng.Sync(ctx, nil, false)
	require.ErrorIs(t, err, pushlogerrors.ErrIndexDisabled)
	_, err = eng.RemoteRefs(ctx, "")
	require.ErrorIs(t, err, pushlogerrors.ErrIndexDisabled)

	_, ok := eng.Registry().Lookup("tree")
	require.False(t, ok)
	result2, err := eng.Query(ctx, []string{"bug(1000001)"}, nil)
	require.NoError(t, err)
	require.Equal(t, revset.RevSet{up.Nodes[0]}, result2)
}

func TestSync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	up := testhelpers.NewUpstream(t, scene)
	eng, _ := openEngine(t, scene)

	_, err := eng.Sync(ctx, []string{"nowhere"}, false)
	require.ErrorIs(t, err, pushlogerrors.ErrUnknownTree)
	_, err = eng.SyncPlan([]string{"nowhere"})
	require.ErrorIs(t, err, pushlogerrors.ErrUnknownTree)

	// Aliases collapse onto the tree they name
	plan, err := eng.SyncPlan([]string{"mc", "central"})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	require.Equal(t, "central", plan[0].Name)

	// Changesets are missing locally, so nothing is stored yet
	results, err := eng.Sync(ctx, []string{"central"}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 0, results[0].Added)
	require.NotNil(t, results[0].Truncated)

	require.NoError(t, scene.Repo.RunGitCommand("fetch", up.Repo.Dir, "main"))
	eng.Invalidate()

	results, err = eng.Sync(ctx, []string{"mc"}, false)
	require.NoError(t, err)
	require.Equal(t, 2, results[0].Added)
	require.Nil(t, results[0].Truncated)

	results, err = eng.Sync(ctx, []string{"central"}, true)
	require.NoError(t, err)
	require.Equal(t, int64(0), results[0].FetchFrom)
	require.Equal(t, 2, results[0].Added)
}

func TestSyncBugs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		if err := s.Repo.CreateChangeAndCommit("Bug 1000005 - one", "a"); err != nil {
			return err
		}
		if err := s.Repo.CreateChangeAndCommit("Bug 1000006 - two, see bug 1000005", "b"); err != nil {
			return err
		}
		return s.Repo.CreateChangeAndCommit("No bug - three", "c")
	})
	eng, _ := openEngine(t, scene)

	count, err := eng.SyncBugs(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	first, err := scene.Repo.GetRevision("HEAD~2")
	require.NoError(t, err)
	second, err := scene.Repo.GetRevision("HEAD~1")
	require.NoError(t, err)

	nodes, err := eng.ChangesetsWithBugs(ctx, []int{1000006, 1000005})
	require.NoError(t, err)
	require.Equal(t, []string{first, second}, nodes)

	count, err = eng.SyncBugs(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestReconcile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	eng, _ := openEngine(t, scene)

	changes, err := eng.Reconcile(ctx, "m-c", map[string][]string{
		"default":                         {"aaaa"},
		"GECKO450b1_2016030721_RELBRANCH": {"bbbb"},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"central/default": "aaaa"}, changes.Set)

	_, err = eng.Reconcile(ctx, "beta", map[string][]string{
		"default":                         {"cccc"},
		"GECKO450b1_2016030721_RELBRANCH": {"bbbb"},
	})
	require.NoError(t, err)

	_, err = eng.Reconcile(ctx, "releases", nil)
	require.Error(t, err)
	_, err = eng.Reconcile(ctx, "nowhere", nil)
	require.ErrorIs(t, err, pushlogerrors.ErrUnknownTree)

	pruned, err := eng.PruneRelbranches(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"beta/GECKO450b1_2016030721_RELBRANCH"}, pruned)

	got, err := eng.RemoteRefs(ctx, "")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"central/default": "aaaa", "beta/default": "cccc"}, got)
}

func TestIdentity(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	eng, _ := openEngine(t, scene)
	require.Equal(t, "Test User <test@example.com>", eng.Identity())

	require.NoError(t, scene.WriteRepoConfig(`{"headless": true, "username": "dev@example.com"}`))
	eng, _ = openEngine(t, scene)
	require.Equal(t, "dev@example.com", eng.Identity())
}
