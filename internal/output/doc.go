// Package output renders command results: push tables, provenance reports,
// the tree registry and stored refs.
package output
