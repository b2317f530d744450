// Package tui provides the terminal side of pushlog.
//
// It handles:
//   - Structured logging and status reporting (Splog)
//   - Terminal styling and colors (using lipgloss)
//   - The confirmation prompt guarding destructive commands (using bubbletea)
package tui
