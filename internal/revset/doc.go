// Package revset implements the query predicates over changesets and the
// pushlog index.
//
// Predicates are registered in a Registry that is handed to an Executor.
// Each predicate narrows an ordered candidate subset; Query chains them
// over the whole graph.
package revset
