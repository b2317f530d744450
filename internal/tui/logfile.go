package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If PUSHLOG_LOG_FILE is set, uses that path. Otherwise uses configured
// (the repository's logFile setting) when set, else ~/.pushlog/logs/pushlog.log
func GetLogFilePath(configured string) string {
	if customPath := os.Getenv("PUSHLOG_LOG_FILE"); customPath != "" {
		return customPath
	}
	if configured != "" {
		return configured
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "pushlog.log"
	}

	return filepath.Join(homeDir, ".pushlog", "logs", "pushlog.log")
}
