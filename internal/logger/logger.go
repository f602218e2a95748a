// Package logger provides debug tracing for the recipeops commands.
// Messages are structured slog records written to stdout; they are only
// emitted when verbose mode is enabled via the --verbose flag.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu    sync.RWMutex
	level = new(slog.LevelVar)
	log   = newLogger(os.Stdout)
)

func init() {
	level.Set(slog.LevelWarn)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose enables or disables debug output.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelWarn)
}

// SetOutput sets the writer for log records. Defaults to os.Stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(w)
}

// Debug logs a message with key/value attributes when verbose mode is on.
func Debug(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug(msg, args...)
}

// Warn logs a warning. Warnings are always emitted.
func Warn(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn(msg, args...)
}
