// Package logging provides the daemon's logger: a slog.Handler that mimics
// the project's long-standing "[timestamp] LEVEL file:line: message" line
// format, colored when writing to a terminal and plain when writing to a
// file, plus custom Trace and Fatal severities slog doesn't ship with.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Custom severities bracketing slog's four built-in levels: Trace sits
// below Debug for per-iteration pipeline chatter, Fatal sits above Error
// for conditions the process cannot continue past.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelFatal = slog.LevelError + 4
)

const timeLayout = "[2006-01-02 15:04:05]"

func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelDebug:
		return "TRACE"
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	case l < LevelFatal:
		return "ERROR"
	default:
		return "FATAL"
	}
}

func levelColor(l slog.Level) string {
	switch levelName(l) {
	case "TRACE":
		return "\x1b[94m"
	case "DEBUG":
		return "\x1b[36m"
	case "INFO":
		return "\x1b[32m"
	case "WARN":
		return "\x1b[33m"
	case "ERROR":
		return "\x1b[31m"
	default: // FATAL
		return "\x1b[35m"
	}
}

// Handler is a slog.Handler writing one line per record. Colored handlers
// (meant for a terminal) wrap the level name and the file:line in ANSI
// escapes and reset after each; plain handlers (meant for a logfile) don't.
type Handler struct {
	w       io.Writer
	colored bool
	mu      *sync.Mutex
	attrs   []slog.Attr
}

// NewHandler wraps w. Set colored for a terminal sink, clear it for a file
// sink — matching the project's rule that the file-logging path doesn't
// want escape codes turning up in saved logs.
func NewHandler(w io.Writer, colored bool) *Handler {
	return &Handler{w: w, colored: colored, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(context.Context, slog.Level) bool { return true }

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	file, line := "???", 0
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		if f.File != "" {
			file, line = filepath.Base(f.File), f.Line
		}
	}

	var attrBuf strings.Builder
	for _, a := range h.attrs {
		fmt.Fprintf(&attrBuf, " %s=%v", a.Key, a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&attrBuf, " %s=%v", a.Key, a.Value.Any())
		return true
	})

	ts := r.Time.Format(timeLayout)
	name := levelName(r.Level)

	h.mu.Lock()
	defer h.mu.Unlock()
	var err error
	if h.colored {
		_, err = fmt.Fprintf(h.w, "%s %s%-5s\x1b[0m \x1b[90m%s:%d:\x1b[0m %s%s\n",
			ts, levelColor(r.Level), name, file, line, r.Message, attrBuf.String())
	} else {
		_, err = fmt.Fprintf(h.w, "%s %-5s %s:%d: %s%s\n",
			ts, name, file, line, r.Message, attrBuf.String())
	}
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{w: h.w, colored: h.colored, mu: h.mu, attrs: merged}
}

func (h *Handler) WithGroup(string) slog.Handler {
	// the line format has no room for a group prefix; nothing groups here.
	return h
}

// Logger is the pipeline's logging entry point: six severities, the top
// one (Fatal) terminating the process after the line is written.
type Logger struct {
	h slog.Handler
}

// New builds a Logger around the given handler.
func New(h slog.Handler) *Logger {
	return &Logger{h: h}
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !l.h.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.h.Handle(context.Background(), r)
	if level >= LevelFatal {
		os.Exit(1)
	}
}

// Log emits at an arbitrary level, for callers (like the pipeline's
// asynchronous log fan-in) that only learn the level at runtime.
func (l *Logger) Log(level slog.Level, msg string, args ...any) { l.log(level, msg, args...) }

func (l *Logger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args...) }
func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }
func (l *Logger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args...) }

const logsDir = "logs"

// NewFileSink creates (if needed) the logs/ directory and opens a new
// timestamped logfile for append, announcing its path on stderr — the one
// line that bypasses the logger entirely, since at startup there's no
// Logger worker yet to hand it to.
func NewFileSink() (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o777); err != nil {
		return nil, err
	}
	name := filepath.Join(logsDir, time.Now().Format("cut-2006-01-02-15-04-05.log"))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "opened new log file: %s\n", name)
	return f, nil
}

// StderrSink is the log sink used when file logging is turned off.
func StderrSink() io.Writer { return os.Stderr }

// NewFromConfig builds a Logger per the --stderr toggle: toFile selects a
// freshly created logs/ file (plain, uncolored lines); otherwise stderr is
// used directly (colored lines). The returned closer is nil for the
// stderr sink, and must be closed by the caller on shutdown otherwise.
func NewFromConfig(toFile bool) (*Logger, io.Closer, error) {
	if !toFile {
		return New(NewHandler(StderrSink(), true)), nil, nil
	}
	f, err := NewFileSink()
	if err != nil {
		return nil, nil, err
	}
	return New(NewHandler(f, false)), f, nil
}
