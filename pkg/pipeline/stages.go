package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/ja7ad/cuttrack/pkg/cpu"
	"github.com/ja7ad/cuttrack/pkg/logging"
	"github.com/ja7ad/cuttrack/pkg/procstat"
	"github.com/ja7ad/cuttrack/pkg/term"
)

// runReader repeatedly takes a full sample bundle and hands it to the
// Analyzer, until ctx is cancelled. It has no upstream queue of its own,
// so it pings its liveness flag directly rather than through a
// WorkerQueue.
//
// Counter acquisition failures are not retried: a failure to open or read
// /proc/stat means the kernel's accounting interface is gone or broken,
// which this process has no way to recover from, so it logs and aborts
// rather than spinning on the same error forever.
func runReader(ctx context.Context, out *WorkerQueue[cpu.SampleBundle], loggerQ *WorkerQueue[logEvent], logger *logging.Logger, alive *atomic.Bool) {
	pushLog(loggerQ, slog.LevelInfo, "[Reader] starting work!")

	for ctx.Err() == nil {
		alive.Store(true)
		bundle, err := procstat.ReadBundle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Fatal("[Reader] counter acquisition failed", "err", err)
		}
		alive.Store(true)
		out.PushAndSignal(bundle)
		pushLog(loggerQ, logging.LevelTrace, "[Reader] got new samples!")
	}

	pushLog(loggerQ, slog.LevelInfo, "[Reader] shutting down...")
	out.OrderTermination()
}

// runAnalyzer computes a Usage vector from each bundle it receives and
// forwards it to the Printer, until the Reader orders it to stop.
func runAnalyzer(in *WorkerQueue[cpu.SampleBundle], out *WorkerQueue[cpu.Usage], loggerQ *WorkerQueue[logEvent]) {
	pushLog(loggerQ, slog.LevelInfo, "[Analyzer] starting work!")

	for {
		bundle, ok := in.WaitAndPop()
		if !ok {
			break
		}
		out.PushAndSignal(cpu.Compute(bundle))
	}

	pushLog(loggerQ, slog.LevelInfo, "[Analyzer] shutting down...")
	out.OrderTermination()
}

// runPrinter renders each Usage vector it receives to w, until the
// Analyzer orders it to stop.
func runPrinter(in *WorkerQueue[cpu.Usage], loggerQ *WorkerQueue[logEvent], w io.Writer) {
	pushLog(loggerQ, slog.LevelInfo, "[Printer] starting work!")

	for {
		usage, ok := in.WaitAndPop()
		if !ok {
			break
		}
		if err := term.Render(w, usage); err != nil {
			pushLog(loggerQ, slog.LevelError, "[Printer] render error", "err", err)
		}
	}

	pushLog(loggerQ, slog.LevelInfo, "[Printer] shutting down...")
	loggerQ.OrderTermination()
}

// runLogger is the fan-in for every other stage's log events. Once the
// Printer orders it to stop, it drains and still formats whatever events
// were queued but not yet emitted, rather than discarding them.
func runLogger(q *WorkerQueue[logEvent], logger *logging.Logger) {
	logger.Info("[Logger] starting work!")

	for {
		ev, ok := q.WaitAndPop()
		if !ok {
			break
		}
		logger.Log(ev.level, ev.msg, ev.args...)
	}

	for _, ev := range q.Drain() {
		logger.Log(ev.level, ev.msg, ev.args...)
	}

	logger.Info("[Logger] shutting down...")
}
