package pipeline

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ja7ad/cuttrack/pkg/cpu"
	"github.com/ja7ad/cuttrack/pkg/logging"
)

// Runtime owns the wiring between the four stages and the watchdog, and
// the sinks they write to.
type Runtime struct {
	logger *logging.Logger
	closer io.Closer
	out    io.Writer
}

// NewRuntime builds a Runtime. closer may be nil (the stderr sink has
// nothing to close); out is where rendered usage frames are written,
// typically os.Stdout.
func NewRuntime(logger *logging.Logger, closer io.Closer, out io.Writer) *Runtime {
	return &Runtime{logger: logger, closer: closer, out: out}
}

// Run starts every stage and the watchdog, and blocks until ctx is
// cancelled. Cancellation unblocks the Reader (procstat.ReadBundle
// observes ctx directly), which then orders the Analyzer to stop, which
// orders the Printer, which orders the Logger — each stage draining its
// own queue before returning. Run itself returns once every stage has
// exited and the log sink, if any, is closed.
func (rt *Runtime) Run(ctx context.Context) error {
	var flags [numStages]*atomic.Bool
	for i := range flags {
		flags[i] = &atomic.Bool{}
		flags[i].Store(true)
	}

	analyzerQ := NewWorkerQueue[cpu.SampleBundle](flags[StageAnalyzer])
	printerQ := NewWorkerQueue[cpu.Usage](flags[StagePrinter])
	loggerQ := NewWorkerQueue[logEvent](flags[StageLogger])

	wd := NewWatchdog(loggerQ.Len, flags)
	wdCtx, cancelWd := context.WithCancel(context.Background())
	defer cancelWd()
	go wd.Run(wdCtx)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() { defer wg.Done(); runReader(ctx, analyzerQ, loggerQ, rt.logger, flags[StageReader]) }()
	go func() { defer wg.Done(); runAnalyzer(analyzerQ, printerQ, loggerQ) }()
	go func() { defer wg.Done(); runPrinter(printerQ, loggerQ, rt.out) }()
	go func() { defer wg.Done(); runLogger(loggerQ, rt.logger) }()

	<-ctx.Done()
	wg.Wait()
	cancelWd()

	if rt.closer != nil {
		return rt.closer.Close()
	}
	return nil
}
