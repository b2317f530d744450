package testhelpers

import (
	"fmt"
	"strings"
	"sync"
)

// RecordingLogger collects log lines by level
type RecordingLogger struct {
	mu     sync.Mutex
	Infos  []string
	Warns  []string
	Debugs []string
}

// Info records an info line
func (l *RecordingLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, fmt.Sprintf(format, args...))
}

// Warn records a warning
func (l *RecordingLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, fmt.Sprintf(format, args...))
}

// Debug records a debug line
func (l *RecordingLogger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, fmt.Sprintf(format, args...))
}

// Warned reports whether any warning contains substr
func (l *RecordingLogger) Warned(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.Warns {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
