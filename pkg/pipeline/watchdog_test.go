package pipeline

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newFlags() [numStages]*atomic.Bool {
	var flags [numStages]*atomic.Bool
	for i := range flags {
		flags[i] = &atomic.Bool{}
		flags[i].Store(true)
	}
	return flags
}

func TestWatchdog_TripsOnStalledStage(t *testing.T) {
	var buf bytes.Buffer
	var exited bool
	var exitCode int

	flags := newFlags()
	wd := NewWatchdog(func() int { return 3 }, flags)
	wd.stderr = &buf
	wd.exit = func(code int) { exited = true; exitCode = code }

	ctx, cancel := context.WithTimeout(context.Background(), TWatchdog+50*time.Millisecond)
	defer cancel()

	// every flag but StagePrinter gets pinged once per window; Printer is
	// left untouched, so it should trip.
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				flags[StageReader].Store(true)
				flags[StageAnalyzer].Store(true)
				flags[StageLogger].Store(true)
			}
		}
	}()

	wd.Run(ctx)
	close(stop)

	assert.True(t, exited, "a stalled stage must tear the process down")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, buf.String(), "watchdog tripped")
	assert.Contains(t, buf.String(), "stage=printer")
	assert.NotContains(t, buf.String(), "stage=reader")
}

func TestWatchdog_NoTripWhenAllStagesPing(t *testing.T) {
	var buf bytes.Buffer
	var exited bool

	flags := newFlags()
	wd := NewWatchdog(nil, flags)
	wd.stderr = &buf
	wd.exit = func(int) { exited = true }

	ctx, cancel := context.WithTimeout(context.Background(), TWatchdog+50*time.Millisecond)
	defer cancel()

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				for _, f := range flags {
					f.Store(true)
				}
			}
		}
	}()

	wd.Run(ctx)
	close(stop)

	assert.False(t, exited)
	assert.NotContains(t, buf.String(), "watchdog tripped")
}
