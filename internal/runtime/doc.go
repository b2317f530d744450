// Package runtime provides the execution context for pushlog commands.
//
// It encapsulates shared dependencies needed by commands, such as the engine
// instance, logger, and repository root path.
package runtime
