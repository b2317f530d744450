package tui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY returns true if we can use a TTY for interactive prompts
func IsTTY() bool {
	if os.Getenv("PUSHLOG_NO_INTERACTIVE") != "" {
		return false
	}
	// First check if stdin/stdout are terminals
	if !((isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))) {
		return false
	}
	// Also try to open /dev/tty to verify it's actually available
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// Confirm asks before a destructive step. Without a terminal the answer is
// no, unless force skips the question.
func Confirm(prompt string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if !IsTTY() {
		return false, nil
	}
	return PromptConfirm(prompt, false)
}
