package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newRepoDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0750))
	return dir
}

func TestGetRepoConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when config does not exist", func(t *testing.T) {
		t.Parallel()
		dir := newRepoDir(t)

		cfg, err := GetRepoConfig(dir)
		require.NoError(t, err)
		require.True(t, cfg.IndexEnabled())
		require.False(t, cfg.IsHeadless())
		require.True(t, cfg.KeepRelbranches())
		require.Equal(t, DefaultMilestonePath, cfg.Milestone())
		require.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout())
		require.Equal(t, DefaultTreeherderURL, cfg.Treeherder())
		require.False(t, IsInitialized(dir))
	})

	t.Run("fails on malformed config", func(t *testing.T) {
		t.Parallel()
		dir := newRepoDir(t)
		require.NoError(t, os.WriteFile(ConfigPath(dir), []byte("{"), 0600))

		_, err := GetRepoConfig(dir)
		require.Error(t, err)
	})

	t.Run("round trips written values", func(t *testing.T) {
		t.Parallel()
		dir := newRepoDir(t)
		timeout := 5
		path := "browser/config/version.txt"
		require.NoError(t, WriteRepoConfig(dir, &RepoConfig{
			FetchTimeoutSeconds: &timeout,
			MilestonePath:       &path,
		}))

		cfg, err := GetRepoConfig(dir)
		require.NoError(t, err)
		require.Equal(t, 5*time.Second, cfg.FetchTimeout())
		require.Equal(t, path, cfg.Milestone())
		require.True(t, IsInitialized(dir))
	})
}

func TestSetters(t *testing.T) {
	t.Parallel()
	dir := newRepoDir(t)

	require.NoError(t, SetIRCNick(dir, "gps"))
	require.NoError(t, SetLocalDatabaseEnabled(dir, false))

	cfg, err := GetRepoConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "gps", cfg.Nick())
	require.False(t, cfg.IndexEnabled())
}

func TestRequireNick(t *testing.T) {
	t.Parallel()

	_, err := (&RepoConfig{}).RequireNick()
	require.Error(t, err)

	headless := true
	nick, err := (&RepoConfig{Headless: &headless}).RequireNick()
	require.NoError(t, err)
	require.Empty(t, nick)
}
