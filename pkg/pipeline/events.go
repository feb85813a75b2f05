package pipeline

import "log/slog"

// logEvent is what the non-Logger stages hand to the Logger's queue
// instead of writing to a sink directly, so their own work is never
// blocked on log I/O.
type logEvent struct {
	level slog.Level
	msg   string
	args  []any
}

func pushLog(q *WorkerQueue[logEvent], level slog.Level, msg string, args ...any) {
	q.PushAndSignal(logEvent{level: level, msg: msg, args: args})
}
