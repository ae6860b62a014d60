// Package logger writes heapexplorer's debug log. Every record carries the
// heap file being viewed, so one log can hold sessions for several heaps.
package logger

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// L is the global logger instance. It discards everything until Init enables it.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logName    = "heapexplorer.log"
	maxLogSize = 4 << 20
)

// Options configures the logger initialization.
type Options struct {
	Enabled  bool       // If false, all logging is discarded
	LogDir   string     // Default: ~/.heapexplorer/logs
	Level    slog.Level // Minimum log level
	HeapPath string     // Heap file attached to every record
	PageSize int
}

// Init configures logging. The terminal belongs to the UI, so enabled logs
// always go to a file. When the file reaches maxLogSize it is moved aside
// to heapexplorer.log.1, replacing any older copy.
func Init(opts Options) error {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	dir := opts.LogDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".heapexplorer", "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	name := filepath.Join(dir, logName)
	if err := rotate(name, maxLogSize); err != nil {
		return err
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	L = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: opts.Level})).
		With(heapAttrs(opts.HeapPath, opts.PageSize)...)
	return nil
}

// heapAttrs groups the heap identity under "heap". Relative paths are made
// absolute so records from different working directories line up.
func heapAttrs(path string, pageSize int) []any {
	if path == "" {
		return nil
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return []any{slog.Group("heap", "path", path, "page_size", pageSize)}
}

func rotate(name string, limit int64) error {
	fi, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Size() < limit {
		return nil
	}
	return os.Rename(name, name+".1")
}

// Snapshot records one decode of the heap image. An invalid image is logged
// at warn level together with the reason.
func Snapshot(size, segments, chunks, freeChunks int, problem error) {
	args := []any{"bytes", size, "segments", segments, "chunks", chunks, "free_chunks", freeChunks}
	if problem != nil {
		L.Warn("heap snapshot invalid", append(args, "error", problem)...)
		return
	}
	L.Debug("heap snapshot", args...)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
