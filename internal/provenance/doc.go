// Package provenance answers where and when a changeset landed.
//
// It combines the pushes stored in the local index with the revision graph:
// first pushes, push heads, release milestones read from the tree at a push
// head, and the partition of history by the release version that first
// shipped each changeset.
package provenance
