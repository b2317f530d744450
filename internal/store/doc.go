// Package store persists the local pushlog index.
//
// The index lives in a SQLite database inside the .git directory and holds:
//   - pushes per tree, keyed by the server assigned push id
//   - which changesets each push introduced
//   - bug numbers referenced by changesets
//   - the last observed head of every tree/branch remote ref
//
// Pushes are append only. A (tree, push id) pair is never rewritten once stored;
// the only way to remove pushes is WipePushlog. Bug associations are removed
// only by WipeBugs.
package store
