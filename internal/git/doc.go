// Package git provides the revision graph of the local repository.
//
// It wraps go-git and the git CLI and provides:
//   - Revision resolution and commit metadata
//   - Ancestor and find-missing traversals
//   - A stable topological order of every revision reachable from a reference
//   - Remote branch listing and fetching
//
// This package should be the only place where direct git commands are executed.
package git
