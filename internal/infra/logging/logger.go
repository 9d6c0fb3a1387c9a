// Package logging writes categorized log records under <dataDir>/logs.
// Every record goes to teamcal.log; records about a task also go to
// task-<id>.log so one task's history can be read on its own.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/qcteam/teamcal/internal/domain"
)

var _ domain.Logger = (*Logger)(nil)

// Record attribute keys.
const (
	AttrCategory = "category"
	AttrTask     = "task"
)

// Logger renders slog text records into the global and per-task log files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	mirror  io.Writer
	global  *os.File
	tasks   map[string]*os.File
	dataDir string
	mu      sync.Mutex
	level   slog.Level
}

// New creates a Logger rooted at dataDir. An empty dataDir disables output.
// Files are opened on first use.
func New(dataDir string, level slog.Level) *Logger {
	return &Logger{
		dataDir: dataDir,
		level:   level,
		tasks:   make(map[string]*os.File),
	}
}

// ParseLevel maps a [log] level value to slog. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// SetMirror copies every record to w as well (nil disables).
func (l *Logger) SetMirror(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mirror = w
}

func (l *Logger) Debug(taskID, category, msg string) { l.emit(slog.LevelDebug, taskID, category, msg) }
func (l *Logger) Info(taskID, category, msg string)  { l.emit(slog.LevelInfo, taskID, category, msg) }
func (l *Logger) Warn(taskID, category, msg string)  { l.emit(slog.LevelWarn, taskID, category, msg) }
func (l *Logger) Error(taskID, category, msg string) { l.emit(slog.LevelError, taskID, category, msg) }

func (l *Logger) emit(level slog.Level, taskID, category, msg string) {
	if l.dataDir == "" || level < l.level {
		return
	}

	rec := slog.NewRecord(time.Now(), level, msg, 0)
	rec.AddAttrs(slog.String(AttrCategory, category))
	if taskID != "" {
		rec.AddAttrs(slog.String(AttrTask, taskID))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sinks := l.sinksLocked(taskID)
	if len(sinks) == 0 {
		return
	}
	h := slog.NewTextHandler(io.MultiWriter(sinks...), &slog.HandlerOptions{Level: l.level})
	_ = h.Handle(context.Background(), rec)
}

// sinksLocked returns the writers a record goes to. Files that cannot be
// opened are skipped; logging never fails the caller.
func (l *Logger) sinksLocked(taskID string) []io.Writer {
	sinks := make([]io.Writer, 0, 3)
	if f, err := l.globalLocked(); err == nil {
		sinks = append(sinks, f)
	}
	if taskID != "" {
		if f, err := l.taskLocked(taskID); err == nil {
			sinks = append(sinks, f)
		}
	}
	if l.mirror != nil {
		sinks = append(sinks, l.mirror)
	}
	return sinks
}

func (l *Logger) globalLocked() (*os.File, error) {
	if l.global != nil {
		return l.global, nil
	}
	f, err := openAppend(domain.GlobalLogPath(l.dataDir))
	if err != nil {
		return nil, err
	}
	l.global = f
	return f, nil
}

func (l *Logger) taskLocked(taskID string) (*os.File, error) {
	if f, ok := l.tasks[taskID]; ok {
		return f, nil
	}
	f, err := openAppend(domain.TaskLogPath(l.dataDir, safeFileName(taskID)))
	if err != nil {
		return nil, err
	}
	l.tasks[taskID] = f
	return f, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // group-readable logs
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// safeFileName keeps task ids from escaping the logs directory.
func safeFileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, id)
}

// Close closes every open log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l.global != nil {
		keep(l.global.Close())
		l.global = nil
	}
	for id, f := range l.tasks {
		keep(f.Close())
		delete(l.tasks, id)
	}
	return firstErr
}
