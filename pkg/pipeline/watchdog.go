package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// Stage identifies one of the four pipeline workers the watchdog tracks.
type Stage int

const (
	StageReader Stage = iota
	StageAnalyzer
	StagePrinter
	StageLogger
	numStages
)

func (s Stage) String() string {
	switch s {
	case StageReader:
		return "reader"
	case StageAnalyzer:
		return "analyzer"
	case StagePrinter:
		return "printer"
	case StageLogger:
		return "logger"
	default:
		return "unknown"
	}
}

// Watchdog monitors one liveness flag per stage. Every TWatchdog window it
// clears all flags, waits out the window, then trips for any flag still
// clear — a sign that stage made no progress at all during the window,
// as opposed to merely being between units of work.
//
// A trip is fatal: the line it prints goes straight to stderr, bypassing
// the configurable log sink, because a stuck stage means the Logger
// worker itself may be the one stuck, in which case anything routed
// through its queue would never be seen.
type Watchdog struct {
	flags   [numStages]*atomic.Bool
	backlog func() int
	stderr  io.Writer
	exit    func(code int)
}

// NewWatchdog builds a Watchdog over flags, one per Stage constant.
// backlog reports the logger queue's depth for trip diagnostics; it may be
// nil.
func NewWatchdog(backlog func() int, flags [numStages]*atomic.Bool) *Watchdog {
	return &Watchdog{
		flags:   flags,
		backlog: backlog,
		stderr:  os.Stderr,
		exit:    os.Exit,
	}
}

// Flag returns the liveness flag for s, for a stage to ping directly when
// it has no WorkerQueue of its own to ping it automatically.
func (wd *Watchdog) Flag(s Stage) *atomic.Bool { return wd.flags[s] }

// Run arms every flag, sleeps one TWatchdog window, checks for stragglers,
// and repeats until ctx is cancelled.
func (wd *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(TWatchdog)
	defer ticker.Stop()

	for {
		for _, f := range wd.flags {
			f.Store(false)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for i, f := range wd.flags {
			if !f.Load() {
				wd.trip(Stage(i))
			}
		}
	}
}

// humanizeBytes renders n as a short auto-unit size string (B/KB/MB/GB),
// enough precision for a backlog estimate that is never exact to begin
// with.
func humanizeBytes(n uint64) string {
	const unit = 1024
	switch {
	case n >= unit*unit*unit:
		return fmt.Sprintf("%.2f GB", float64(n)/(unit*unit*unit))
	case n >= unit*unit:
		return fmt.Sprintf("%.2f MB", float64(n)/(unit*unit))
	case n >= unit:
		return fmt.Sprintf("%.2f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// trip prints the fatal diagnostic directly to stderr and tears the
// process down with a failure status — the watchdog's entire reason to
// exist is catching a stage that will never make progress again, so
// there is nothing left to wait for once this fires.
func (wd *Watchdog) trip(s Stage) {
	var backlogItems int
	if wd.backlog != nil {
		backlogItems = wd.backlog()
	}
	size := humanizeBytes(uint64(backlogItems) * itemSizeEstimate)
	fmt.Fprintf(wd.stderr, "watchdog tripped: stage=%s backlog=%s\n", s.String(), size)
	wd.exit(1)
}
