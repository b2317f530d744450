package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// DefaultCommandTimeout bounds git commands whose context has no deadline
const DefaultCommandTimeout = 5 * time.Minute

// CommandRunner runs the git binary inside a clone, for network operations
// go-git does not cover
type CommandRunner struct {
	workingDir string
}

// NewCommandRunner creates a CommandRunner for the clone at workingDir
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir}
}

// Run executes git with args and returns its trimmed stdout. Git never
// prompts for credentials; a remote that needs them fails instead.
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.workingDir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", pushlogerrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
