package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

func TestTreesLookup(t *testing.T) {
	t.Parallel()
	trees := DefaultTrees()

	t.Run("resolves canonical names", func(t *testing.T) {
		t.Parallel()
		tree, ok := trees.Lookup("central")
		require.True(t, ok)
		require.Equal(t, "https://hg.mozilla.org/mozilla-central", tree.URI)
	})

	t.Run("resolves aliases case insensitively", func(t *testing.T) {
		t.Parallel()
		tree, ok := trees.Lookup("M-C")
		require.True(t, ok)
		require.Equal(t, "central", tree.Name)
	})

	t.Run("expands groups", func(t *testing.T) {
		t.Parallel()
		names, err := trees.Expand(ReleasesGroup)
		require.NoError(t, err)
		require.Contains(t, names, "beta")
		require.Contains(t, names, "release")
	})

	t.Run("unknown names fail", func(t *testing.T) {
		t.Parallel()
		_, err := trees.Expand("nope")
		require.ErrorIs(t, err, pushlogerrors.ErrUnknownTree)
	})

	t.Run("release membership", func(t *testing.T) {
		t.Parallel()
		require.True(t, trees.IsRelease("beta"))
		require.False(t, trees.IsRelease("central"))
		require.True(t, trees.IsRelease("central", "central"))
	})
}

func TestTreeForURI(t *testing.T) {
	t.Parallel()
	trees := DefaultTrees()

	tree, ok := trees.TreeForURI("http://hg.mozilla.org/integration/autoland/")
	require.True(t, ok)
	require.Equal(t, "autoland", tree.Name)

	tree, ok = trees.TreeForURI("ssh://hg.mozilla.org/mozilla-central")
	require.True(t, ok)
	require.Equal(t, "central", tree.Name)

	_, ok = trees.TreeForURI("https://example.com/other")
	require.False(t, ok)
}

func TestLoadTrees(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults without a registry file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0750))

		trees, err := LoadTrees(dir)
		require.NoError(t, err)
		require.Equal(t, DefaultTrees().Names(), trees.Names())
	})

	t.Run("overlays trees and groups from yaml", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0750))
		registry := `trees:
  - name: central
    uri: https://git.example.com/central.git
    pushlog: https://hg.example.com/central
    branch: main
    aliases: [c]
  - name: staging
    uri: https://git.example.com/staging.git
groups:
  releases: [staging]
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", treesFileName), []byte(registry), 0600))

		trees, err := LoadTrees(dir)
		require.NoError(t, err)

		central, ok := trees.Lookup("c")
		require.True(t, ok)
		require.Equal(t, "https://hg.example.com/central", central.PushlogURI())
		require.Equal(t, "main", central.HeadBranch())

		_, ok = trees.Get("staging")
		require.True(t, ok)
		require.True(t, trees.IsRelease("staging"))
		require.False(t, trees.IsRelease("beta"))
	})

	t.Run("rejects incomplete entries", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", treesFileName), []byte("trees:\n  - name: x\n"), 0600))

		_, err := LoadTrees(dir)
		require.Error(t, err)
	})
}

func TestResolver(t *testing.T) {
	t.Parallel()
	trees := DefaultTrees()

	t.Run("configured remotes win over aliases", func(t *testing.T) {
		t.Parallel()
		remotes := func(name string) (string, bool) {
			if name == "central" {
				return "https://hg.mozilla.org/integration/autoland", true
			}
			return "", false
		}
		res, err := NewResolver(trees, remotes).Resolve("central")
		require.NoError(t, err)
		require.NotNil(t, res.Tree)
		require.Equal(t, "autoland", res.Tree.Name)
	})

	t.Run("falls back to aliases", func(t *testing.T) {
		t.Parallel()
		res, err := NewResolver(trees, nil).Resolve("mb")
		require.NoError(t, err)
		require.Equal(t, "beta", res.Tree.Name)
		require.Equal(t, "https://hg.mozilla.org/releases/mozilla-beta", res.URI)
	})

	t.Run("literal URIs of unknown trees resolve without a tree", func(t *testing.T) {
		t.Parallel()
		res, err := NewResolver(trees, nil).Resolve("https://example.com/repo.git")
		require.NoError(t, err)
		require.Nil(t, res.Tree)
	})

	t.Run("unknown sources fail", func(t *testing.T) {
		t.Parallel()
		_, err := NewResolver(trees, nil).Resolve("not-a-tree")
		require.ErrorIs(t, err, pushlogerrors.ErrUnknownTree)
	})
}
