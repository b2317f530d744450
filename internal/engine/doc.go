// Package engine ties a local clone to its provenance index.
//
// An Engine is opened once per command and owns:
//   - the revision graph of the clone
//   - the local pushlog database, when enabled
//   - the tree registry and repository configuration
//   - the memoized release version partitions of the session
//
// Every write to the database goes through the repository's writer lock.
package engine
