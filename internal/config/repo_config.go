package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultMilestonePath is the file holding the milestone version at a revision
	DefaultMilestonePath = "config/milestone.txt"

	// DefaultTreeherderURL is the base URL for build results of a push
	DefaultTreeherderURL = "https://treeherder.mozilla.org"

	// DefaultFetchTimeout bounds a single pushlog fetch
	DefaultFetchTimeout = 60 * time.Second

	configFileName = ".pushlog_config"
)

// RepoConfig represents the repository configuration
type RepoConfig struct {
	IRCNick              *string  `json:"ircnick,omitempty"`
	Username             *string  `json:"username,omitempty"`
	Headless             *bool    `json:"headless,omitempty"`
	DisableLocalDatabase *bool    `json:"disableLocalDatabase,omitempty"`
	ReleaseTrees         []string `json:"releaseTrees,omitempty"`
	KeepRelbranchRefs    *bool    `json:"keepRelbranchRefs,omitempty"`
	MilestonePath        *string  `json:"milestonePath,omitempty"`
	FetchTimeoutSeconds  *int     `json:"fetchTimeoutSeconds,omitempty"`
	TreeherderURL        *string  `json:"treeherderURL,omitempty"`
	LogFile              *string  `json:"logFile,omitempty"`
}

// ConfigPath returns the location of the repository configuration file
func ConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", configFileName)
}

// GetRepoConfig reads the repository configuration
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	data, err := os.ReadFile(ConfigPath(repoRoot))
	if err != nil {
		// Config doesn't exist - return default
		return &RepoConfig{}, nil
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	return &config, nil
}

// WriteRepoConfig persists the repository configuration
func WriteRepoConfig(repoRoot string, config *RepoConfig) error {
	configJSON, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(repoRoot), configJSON, 0600)
}

// IsInitialized checks if a configuration file has been written
func IsInitialized(repoRoot string) bool {
	_, err := os.Stat(ConfigPath(repoRoot))
	return err == nil
}

// IndexEnabled reports whether the local pushlog database should be used
func (c *RepoConfig) IndexEnabled() bool {
	return c.DisableLocalDatabase == nil || !*c.DisableLocalDatabase
}

// IsHeadless reports whether pushlog runs on a server rather than a developer machine
func (c *RepoConfig) IsHeadless() bool {
	return c.Headless != nil && *c.Headless
}

// Nick returns the configured IRC nickname, or an empty string
func (c *RepoConfig) Nick() string {
	if c.IRCNick == nil {
		return ""
	}
	return *c.IRCNick
}

// RequireNick returns the IRC nickname, failing unless running headless
func (c *RepoConfig) RequireNick() (string, error) {
	nick := c.Nick()
	if nick == "" && !c.IsHeadless() {
		return "", fmt.Errorf("set \"ircnick\" in %s to your IRC nickname to enable additional functionality", configFileName)
	}
	return nick, nil
}

// KeepRelbranches reports whether RELBRANCH refs are kept for release trees
func (c *RepoConfig) KeepRelbranches() bool {
	return c.KeepRelbranchRefs == nil || *c.KeepRelbranchRefs
}

// Milestone returns the path of the milestone file, or the default
func (c *RepoConfig) Milestone() string {
	if c.MilestonePath != nil && *c.MilestonePath != "" {
		return *c.MilestonePath
	}
	return DefaultMilestonePath
}

// FetchTimeout returns the per-request timeout for pushlog fetches
func (c *RepoConfig) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds != nil && *c.FetchTimeoutSeconds > 0 {
		return time.Duration(*c.FetchTimeoutSeconds) * time.Second
	}
	return DefaultFetchTimeout
}

// Treeherder returns the treeherder base URL, or the default
func (c *RepoConfig) Treeherder() string {
	if c.TreeherderURL != nil && *c.TreeherderURL != "" {
		return *c.TreeherderURL
	}
	return DefaultTreeherderURL
}

// SetIRCNick updates the IRC nickname in the config
func SetIRCNick(repoRoot string, nick string) error {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		config = &RepoConfig{}
	}

	config.IRCNick = &nick
	return WriteRepoConfig(repoRoot, config)
}

// SetLocalDatabaseEnabled toggles the local pushlog database
func SetLocalDatabaseEnabled(repoRoot string, enabled bool) error {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		config = &RepoConfig{}
	}

	disabled := !enabled
	config.DisableLocalDatabase = &disabled
	return WriteRepoConfig(repoRoot, config)
}
