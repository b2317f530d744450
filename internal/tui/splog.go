package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTip marks hints about the next command to run
const LevelTip = slog.Level(2)

// consoleHandler prints bare messages, prefixed by level, without timestamps
type consoleHandler struct {
	out   io.Writer
	debug bool
	quiet *atomic.Bool
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.quiet.Load() && level < slog.LevelError {
		return false
	}
	return level > slog.LevelDebug || h.debug
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	_, err := fmt.Fprintln(h.out, consolePrefix(record.Level)+record.Message)
	return err
}

func (h *consoleHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *consoleHandler) WithGroup(_ string) slog.Handler { return h }

func consolePrefix(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ColorRed("error:") + " "
	case level >= slog.LevelWarn:
		return ColorYellow("warning:") + " "
	case level == LevelTip:
		return ColorDim("hint:") + " "
	default:
		return ""
	}
}

// fanout hands each record to every handler that wants it
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// rotatingLog opens the log file; PUSHLOG_LOG_MAX_SIZE (MB),
// PUSHLOG_LOG_MAX_BACKUPS and PUSHLOG_LOG_MAX_AGE (days) override the limits
func rotatingLog(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    envInt("PUSHLOG_LOG_MAX_SIZE", 1, 1),
		MaxBackups: envInt("PUSHLOG_LOG_MAX_BACKUPS", 2, 0),
		MaxAge:     envInt("PUSHLOG_LOG_MAX_AGE", 30, 1),
	}
}

func envInt(name string, fallback, minimum int) int {
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil && n >= minimum {
		return n
	}
	return fallback
}

// Splog writes status messages to the console and, when configured, to a
// rotating log file that records every level with timestamps.
type Splog struct {
	logger *slog.Logger
	out    io.Writer
	file   *lumberjack.Logger
	quiet  atomic.Bool
}

// NewSplog logs to stdout only. DEBUG in the environment enables debug messages.
func NewSplog() *Splog {
	splog, _ := NewSplogWithConfig(os.Stdout, "")
	return splog
}

// NewSplogWithConfig logs to out and, when logFilePath is set, to that file
func NewSplogWithConfig(out io.Writer, logFilePath string) (*Splog, error) {
	s := &Splog{out: out}
	handlers := fanout{&consoleHandler{
		out:   out,
		debug: os.Getenv("DEBUG") != "",
		quiet: &s.quiet,
	}}

	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		s.file = rotatingLog(logFilePath)
		handlers = append(handlers, slog.NewTextHandler(s.file, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
				}
				return a
			},
		}))
	}

	s.logger = slog.New(handlers)
	return s, nil
}

// SetQuiet silences console output below error level. The log file is unaffected.
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet.Store(quiet)
}

// IsQuiet reports whether console output is silenced
func (s *Splog) IsQuiet() bool {
	return s.quiet.Load()
}

func (s *Splog) log(level slog.Level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.logger.Log(context.Background(), level, msg)
}

// Info writes a status message
func (s *Splog) Info(format string, args ...interface{}) {
	s.log(slog.LevelInfo, format, args)
}

// Warn writes a warning
func (s *Splog) Warn(format string, args ...interface{}) {
	s.log(slog.LevelWarn, format, args)
}

// Error writes an error; it is shown even in quiet mode
func (s *Splog) Error(format string, args ...interface{}) {
	s.log(slog.LevelError, format, args)
}

// Debug writes a message shown only when DEBUG is set
func (s *Splog) Debug(format string, args ...interface{}) {
	s.log(slog.LevelDebug, format, args)
}

// Tip suggests what to run next
func (s *Splog) Tip(format string, args ...interface{}) {
	s.log(LevelTip, format, args)
}

// Writer returns the console writer, for output rendered by other packages
func (s *Splog) Writer() io.Writer {
	return s.out
}

// Newline writes an empty line
func (s *Splog) Newline() {
	_, _ = fmt.Fprintln(s.out)
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
