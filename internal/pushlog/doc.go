// Package pushlog fetches remote pushlogs and merges them into the local index.
//
// A fetch asks the server for every push at or after a push id. Sync resumes
// one past the last stored push, so repeated syncs never refetch or rewrite
// stored pushes.
package pushlog
