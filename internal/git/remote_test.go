package git_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/testhelpers"
)

func TestRemoteBranches(t *testing.T) {
	t.Parallel()

	t.Run("lists branch heads", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		bare, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.PushBranch("origin", "main"))

		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("feature change", "feat"))
		require.NoError(t, scene.Repo.PushBranch("origin", "feature"))

		mainHead, err := scene.Repo.GetRevision("main")
		require.NoError(t, err)
		featureHead, err := scene.Repo.GetRevision("feature")
		require.NoError(t, err)

		branches, err := git.RemoteBranches(context.Background(), bare)
		require.NoError(t, err)
		require.Equal(t, map[string][]string{
			"main":    {mainHead},
			"feature": {featureHead},
		}, branches)
	})

	t.Run("empty remote", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		bare, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		branches, err := git.RemoteBranches(context.Background(), bare)
		if err == nil {
			require.Empty(t, branches)
		}
	})
}

func TestFetch(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	upstream := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("upstream", "up")
	})
	head, err := upstream.Repo.GetCurrentSHA()
	require.NoError(t, err)

	runner := git.NewCommandRunner(scene.Dir)
	require.NoError(t, runner.Fetch(context.Background(), upstream.Dir, "central"))

	got, err := scene.Repo.GetRevision("refs/remotes/central/main")
	require.NoError(t, err)
	require.Equal(t, head, got)

	// Failures carry git's stderr
	err = runner.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing"), "central")
	var gitErr *pushlogerrors.GitCommandError
	require.ErrorAs(t, err, &gitErr)
	require.NotEmpty(t, gitErr.Stderr)
}

func TestTransport(t *testing.T) {
	t.Parallel()
	require.Equal(t, "https", git.Transport("https://hg.mozilla.org/mozilla-central"))
	require.Equal(t, "ssh", git.Transport("ssh://hg.mozilla.org/mozilla-central"))
	require.Equal(t, "ssh", git.Transport("git@example.com:repo.git"))
	require.Equal(t, "file", git.Transport("/tmp/central"))
	require.True(t, git.SupportsHTTP("http://hg.mozilla.org/try"))
	require.False(t, git.SupportsHTTP("ssh://hg.mozilla.org/try"))
}
