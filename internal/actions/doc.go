// Package actions provides high-level business logic for CLI commands.
//
// Each action corresponds to a pushlog command (pull, sync, pushes, query, etc.)
// and orchestrates operations across the engine, provenance and output packages.
//
// Key patterns:
//   - Actions accept runtime.Context which provides Engine, Splog, and other dependencies
//   - Actions are stateless - all state is managed through the Engine interface
//   - Actions handle user interaction through the tui package
package actions
