// Package runtime provides a context type that holds the engine and logger
// for use throughout the application. This avoids passing multiple parameters.
package runtime

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/engine"
	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/tui"
)

// Context provides access to engine and output for commands
type Context struct {
	Engine   engine.Engine
	Splog    *tui.Splog
	RepoRoot string
}

// NewContext creates a new context with the given engine
func NewContext(eng engine.Engine, splog *tui.Splog, repoRoot string) *Context {
	return &Context{
		Engine:   eng,
		Splog:    splog,
		RepoRoot: repoRoot,
	}
}

// Close releases the engine and the log file
func (c *Context) Close() error {
	var err error
	if c.Engine != nil {
		err = multierr.Append(err, c.Engine.Close())
	}
	if c.Splog != nil {
		err = multierr.Append(err, c.Splog.Close())
	}
	return err
}

// GetContext opens the repository containing the working directory
func GetContext() (*Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return GetContextAt(cwd, os.Stdout)
}

// GetContextAt opens the repository containing dir, writing output to out
func GetContextAt(dir string, out io.Writer) (*Context, error) {
	repo, err := git.OpenRepository(dir)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	repoRoot := repo.GetRepoRoot()

	cfg, err := config.GetRepoConfig(repoRoot)
	if err != nil {
		return nil, err
	}

	var logFile string
	if cfg.LogFile != nil {
		logFile = *cfg.LogFile
	}
	splog, err := tui.NewSplogWithConfig(out, tui.GetLogFilePath(logFile))
	if err != nil {
		// Console logging still works without a log file
		splog, _ = tui.NewSplogWithConfig(out, "")
	}

	eng, err := engine.Open(repoRoot, splog)
	if err != nil {
		_ = splog.Close()
		return nil, err
	}

	return NewContext(eng, splog, repoRoot), nil
}
