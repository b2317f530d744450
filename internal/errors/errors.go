// Package errors provides sentinel errors and custom error types for the pushlog application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrIndexDisabled indicates that the local pushlog database is disabled by configuration
	ErrIndexDisabled = errors.New("local database appears to be disabled")

	// ErrProtocol indicates a malformed or failed pushlog fetch
	ErrProtocol = errors.New("pushlog protocol error")

	// ErrUnknownChangeset indicates a changeset that is not present in the local repository
	ErrUnknownChangeset = errors.New("unknown changeset")

	// ErrStorage indicates that the local index is unreachable or corrupt
	ErrStorage = errors.New("pushlog storage error")

	// ErrUnknownTree indicates a tree name or URI that cannot be resolved
	ErrUnknownTree = errors.New("unknown tree")

	// ErrValidation indicates malformed query predicate arguments
	ErrValidation = errors.New("invalid query")

	// ErrLocked indicates that another process holds the repository write lock
	ErrLocked = errors.New("repository is locked")
)

// ProtocolError represents a failure reported by, or talking to, a pushlog server
type ProtocolError struct {
	Tree string
	// Remote is the failure message supplied by the server, if any
	Remote  string
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	msg := "error fetching pushlog"
	if e.Tree != "" {
		msg += fmt.Sprintf(" for %s", e.Tree)
	}
	switch {
	case e.Remote != "":
		msg += fmt.Sprintf(": remote error: %s", e.Remote)
	case e.Message != "":
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Is returns true if the target error is ErrProtocol
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError creates a new ProtocolError
func NewProtocolError(tree, message string, err error) *ProtocolError {
	return &ProtocolError{Tree: tree, Message: message, Err: err}
}

// NewRemoteProtocolError creates a ProtocolError carrying a server supplied message
func NewRemoteProtocolError(tree, remote string) *ProtocolError {
	return &ProtocolError{Tree: tree, Remote: remote}
}

// UnknownChangesetError represents a pushlog entry referencing a changeset missing locally
type UnknownChangesetError struct {
	Node string
}

func (e *UnknownChangesetError) Error() string {
	return fmt.Sprintf("received pushlog entry for unknown changeset %s", e.Node)
}

// Is returns true if the target error is ErrUnknownChangeset
func (e *UnknownChangesetError) Is(target error) bool {
	return target == ErrUnknownChangeset
}

// NewUnknownChangesetError creates a new UnknownChangesetError
func NewUnknownChangesetError(node string) *UnknownChangesetError {
	return &UnknownChangesetError{Node: node}
}

// StorageError represents a failure of the persisted index
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("pushlog storage: %s", e.Op)
	}
	return fmt.Sprintf("pushlog storage: %s: %v", e.Op, e.Err)
}

// Is returns true if the target error is ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// UnknownTreeError represents a tree that is not in the registry
type UnknownTreeError struct {
	Name string
}

func (e *UnknownTreeError) Error() string {
	return fmt.Sprintf("don't know about tree: %s", e.Name)
}

// Is returns true if the target error is ErrUnknownTree
func (e *UnknownTreeError) Is(target error) bool {
	return target == ErrUnknownTree
}

// NewUnknownTreeError creates a new UnknownTreeError
func NewUnknownTreeError(name string) *UnknownTreeError {
	return &UnknownTreeError{Name: name}
}

// ValidationError represents a query predicate called with bad arguments
type ValidationError struct {
	Predicate string
	Message   string
}

func (e *ValidationError) Error() string {
	if e.Predicate == "" {
		return e.Message
	}
	return fmt.Sprintf("%s() %s", e.Predicate, e.Message)
}

// Is returns true if the target error is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError
func NewValidationError(predicate, message string) *ValidationError {
	return &ValidationError{Predicate: predicate, Message: message}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
