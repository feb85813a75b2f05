//go:build linux

// Package procstat reads Linux's /proc/stat to produce cpu.Sample and
// cpu.SampleBundle values. It knows nothing about how usage is computed
// from those samples — that is pkg/cpu's job.
package procstat

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ja7ad/cuttrack/pkg/cpu"
)

// procStatPath is a var, not a const, so tests can point it at a fixture
// file instead of the real /proc/stat.
var procStatPath = "/proc/stat"

// ErrNoCPULine is returned when /proc/stat has no aggregate "cpu " line,
// which would mean the kernel's accounting format changed underneath us.
var ErrNoCPULine = errors.New("procstat: no aggregate cpu line in /proc/stat")

// sampleInterval is the spacing between the samples making up a bundle:
// one second split evenly across cpu.NumSamples samples.
const sampleInterval = time.Second / cpu.NumSamples

// ReadSample takes a single snapshot of every line in /proc/stat.
// Cores[0] is always the aggregate row; Cores[i+1] corresponds to "cpuI".
// A core id mentioned by a later line but never reported for this call is
// represented by a zero, offline CoreCounters so its index still exists.
// Scanning stops at the first line that isn't an aggregate or per-core cpu
// line (e.g. "intr"), matching how /proc/stat always lists cpu lines first.
func ReadSample() (cpu.Sample, error) {
	f, err := os.Open(procStatPath)
	if err != nil {
		return cpu.Sample{}, err
	}
	defer f.Close()

	cores := make([]cpu.CoreCounters, 1)
	sawAggregate := false

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 64*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "cpu") {
			break
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			break
		}
		tag := fields[0]

		if tag == "cpu" {
			c, ok := parseCoreFields(fields[1:])
			if !ok {
				break
			}
			cores[0] = c
			sawAggregate = true
			continue
		}

		id, ok := parseCoreID(tag)
		if !ok {
			break // not a "cpuN" line (e.g. falls through to "intr")
		}
		c, ok := parseCoreFields(fields[1:])
		if !ok {
			break
		}
		for len(cores) <= id+1 {
			cores = append(cores, cpu.CoreCounters{})
		}
		cores[id+1] = c
	}
	if err := sc.Err(); err != nil {
		return cpu.Sample{}, err
	}
	if !sawAggregate {
		return cpu.Sample{}, ErrNoCPULine
	}

	return cpu.Sample{Cores: cores}, nil
}

// parseCoreID extracts N from a "cpuN" token.
func parseCoreID(tag string) (int, bool) {
	suffix := strings.TrimPrefix(tag, "cpu")
	if suffix == tag || suffix == "" {
		return 0, false
	}
	id, err := strconv.Atoi(suffix)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// parseCoreFields reads the ten jiffie counters that follow a cpu/cpuN
// tag, in order: user, nice, system, idle, iowait, irq, softirq, steal,
// guest, guest_nice. Missing trailing fields (older kernels predating
// guest/guest_nice) default to zero rather than failing the whole line.
func parseCoreFields(fields []string) (cpu.CoreCounters, bool) {
	if len(fields) == 0 {
		return cpu.CoreCounters{}, false
	}
	get := func(i int) uint64 {
		if i >= len(fields) {
			return 0
		}
		v, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return cpu.CoreCounters{
		User:      get(0),
		Nice:      get(1),
		System:    get(2),
		Idle:      get(3),
		IOWait:    get(4),
		IRQ:       get(5),
		SoftIRQ:   get(6),
		Steal:     get(7),
		Guest:     get(8),
		GuestNice: get(9),
		Online:    true,
	}, true
}

// ReadBundle takes cpu.NumSamples snapshots spaced one second apart in
// total (sampleInterval between each pair), returning early if ctx is
// cancelled between samples.
func ReadBundle(ctx context.Context) (cpu.SampleBundle, error) {
	var bundle cpu.SampleBundle
	for i := 0; i < cpu.NumSamples; i++ {
		s, err := ReadSample()
		if err != nil {
			return bundle, err
		}
		bundle[i] = s

		if i == cpu.NumSamples-1 {
			break
		}
		select {
		case <-ctx.Done():
			return bundle, ctx.Err()
		case <-time.After(sampleInterval):
		}
	}
	return bundle, nil
}
