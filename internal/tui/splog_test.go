package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestSplog(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	t.Run("console output", func(t *testing.T) {
		t.Setenv("DEBUG", "")
		var buf bytes.Buffer
		splog, err := NewSplogWithConfig(&buf, "")
		require.NoError(t, err)

		splog.Info("synced %d trees", 3)
		splog.Debug("hidden")
		splog.Warn("cannot fetch pushlog when pulling via %s://", "ssh")
		splog.Tip("pass --force to skip the confirmation")

		require.Equal(t, "synced 3 trees\nwarning: cannot fetch pushlog when pulling via ssh://\nhint: pass --force to skip the confirmation\n", buf.String())
	})

	t.Run("debug enabled by environment", func(t *testing.T) {
		t.Setenv("DEBUG", "1")
		var buf bytes.Buffer
		splog, err := NewSplogWithConfig(&buf, "")
		require.NoError(t, err)
		splog.Debug("fetching %s", "central")
		require.Equal(t, "fetching central\n", buf.String())
	})

	t.Run("quiet keeps errors", func(t *testing.T) {
		t.Setenv("DEBUG", "")
		var buf bytes.Buffer
		splog, err := NewSplogWithConfig(&buf, "")
		require.NoError(t, err)
		splog.SetQuiet(true)
		require.True(t, splog.IsQuiet())
		splog.Info("dropped")
		splog.Tip("dropped")
		splog.Error("kept")
		require.Equal(t, "error: kept\n", buf.String())

		splog.SetQuiet(false)
		require.False(t, splog.IsQuiet())
		splog.Info("back")
		require.Equal(t, "error: kept\nback\n", buf.String())
	})

	t.Run("file log receives everything", func(t *testing.T) {
		t.Setenv("DEBUG", "")
		path := filepath.Join(t.TempDir(), "logs", "pushlog.log")
		var buf bytes.Buffer
		splog, err := NewSplogWithConfig(&buf, path)
		require.NoError(t, err)
		splog.Debug("only in the file")
		require.NoError(t, splog.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), "only in the file")
		require.Empty(t, buf.String())
	})
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("PUSHLOG_LOG_FILE", "")
	require.Equal(t, "/var/log/pushlog.log", GetLogFilePath("/var/log/pushlog.log"))
	require.Equal(t, "pushlog.log", filepath.Base(GetLogFilePath("")))

	t.Setenv("PUSHLOG_LOG_FILE", "/tmp/override.log")
	require.Equal(t, "/tmp/override.log", GetLogFilePath("/var/log/pushlog.log"))
}

func TestConfirm(t *testing.T) {
	ok, err := Confirm("wipe?", true)
	require.NoError(t, err)
	require.True(t, ok)

	t.Setenv("PUSHLOG_NO_INTERACTIVE", "1")
	_, err = promptConfirm("wipe?", false, &bytes.Buffer{}, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrInteractiveDisabled)
}
