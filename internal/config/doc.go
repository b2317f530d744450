// Package config manages pushlog configuration.
//
// It handles:
//   - Repository-specific configuration stored under .git
//   - The registry of known trees and their aliases
//   - Resolving user supplied tree names, aliases and URIs to trees
package config
