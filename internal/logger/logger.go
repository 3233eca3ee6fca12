// Package logger provides process-wide structured logging for leadsync.
// Messages go through log/slog; console output is rendered by tint and
// machine output by the JSON handler. Debug messages and section headers
// only appear in verbose mode.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Formats accepted by Setup.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	level             = slog.LevelInfo
	format            = FormatText
	base              = build()
)

// Setup configures the minimum level ("debug", "info", "warn", "error")
// and the output format ("text" or "json").
func Setup(lvl, fmtName string) error {
	parsed, err := ParseLevel(lvl)
	if err != nil {
		return err
	}
	switch fmtName {
	case "", FormatText:
		fmtName = FormatText
	case FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", fmtName)
	}

	mu.Lock()
	defer mu.Unlock()
	level = parsed
	format = fmtName
	base = build()
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetVerbose enables or disables verbose logging.
// Verbose mode lowers the level to debug regardless of Setup.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// L returns the current structured logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// With returns the current logger with attrs attached.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Debug logs a formatted debug message.
func Debug(format string, args ...any) {
	L().Debug(fmt.Sprintf(format, args...))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info logs a formatted informational message.
func Info(format string, args ...any) {
	L().Info(fmt.Sprintf(format, args...))
}

// Warn logs a formatted warning.
func Warn(format string, args ...any) {
	L().Warn(fmt.Sprintf(format, args...))
}

// Error logs a formatted error.
func Error(format string, args ...any) {
	L().Error(fmt.Sprintf(format, args...))
}

// build must be called with mu held.
func build() *slog.Logger {
	lvl := level
	if verbose {
		lvl = slog.LevelDebug
	}

	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: lvl}))
	}
	return slog.New(tint.NewHandler(output, &tint.Options{
		Level:      lvl,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(output),
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
