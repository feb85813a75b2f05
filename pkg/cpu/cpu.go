// Package cpu holds the pipeline's core data model (per-core counter
// samples and the usage percentages derived from them) and the usage
// computation itself. It has no dependency on how samples are obtained or
// how usage is displayed — those are the procstat and term packages.
package cpu

import (
	"fmt"

	"github.com/ja7ad/cuttrack/pkg/system/util"
)

// NumSamples is the fixed width of a SampleBundle: the number of /proc/stat
// snapshots the Reader takes per analysis window.
const NumSamples = 10

// Unknown is the sentinel usage value for a core that was absent or
// offline in at least one sample of its bundle.
const Unknown float64 = -1.0

// CoreCounters is one core's (or the aggregate row's) kernel counters from
// a single /proc/stat line, in jiffies.
type CoreCounters struct {
	User      uint64
	Nice      uint64
	System    uint64
	Idle      uint64
	IOWait    uint64
	IRQ       uint64
	SoftIRQ   uint64
	Steal     uint64
	Guest     uint64
	GuestNice uint64
	Online    bool
}

// Sample is one snapshot of every core's counters. Cores[0] is always the
// aggregate "all cpus" row; Cores[i+1] is core i. A core absent from this
// snapshot (not yet hot-plugged, or beyond the cores /proc/stat reported)
// is represented by a zero CoreCounters with Online == false, not by a
// short slice. Samples in a bundle may still differ in length; Compute
// treats a core beyond a sample's length the same as an offline one.
type Sample struct {
	Cores []CoreCounters
}

// SampleBundle is the fixed-size window of samples a single Usage vector is
// computed from. It is a Go array, not a slice: copying a SampleBundle
// copies its full contents by value, which is exactly the "produced once,
// transferred by move" ownership spec.md describes — there is no separate
// free step because there is no shared backing store to leak.
type SampleBundle [NumSamples]Sample

// Usage is a per-core usage percentage vector; Usage[0] is the aggregate.
// An entry equal to Unknown means the corresponding core was missing or
// offline in at least one sample of the source bundle.
type Usage []float64

// Compute derives a Usage vector from a SampleBundle per the fixed
// algorithm: for each core present and online throughout the bundle, usage
// is the mean, over the N-1 consecutive sample pairs, of
// (delta_total - delta_idle) / delta_total, scaled to a percentage.
//
// The aggregate row (index 0) is computed by this exact same routine with
// no special case: it reports Unknown only if the aggregate row itself was
// ever marked offline, which in practice never happens since /proc/stat
// always emits the aggregate line first.
func Compute(bundle SampleBundle) Usage {
	maxLen := 0
	for i := range bundle {
		if n := len(bundle[i].Cores); n > maxLen {
			maxLen = n
		}
	}

	usage := make(Usage, maxLen)
	for core := 0; core < maxLen; core++ {
		usage[core] = computeCore(core, &bundle)
	}
	return usage
}

func computeCore(core int, bundle *SampleBundle) float64 {
	for i := range bundle {
		if core >= len(bundle[i].Cores) || !bundle[i].Cores[core].Online {
			return Unknown
		}
	}

	var idle, total [NumSamples]uint64
	for i := range bundle {
		c := bundle[i].Cores[core]
		idleI := c.Idle + c.IOWait
		nonIdleI := c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal
		idle[i] = idleI
		total[i] = idleI + nonIdleI
	}

	var avg float64
	for i := 1; i < NumSamples; i++ {
		deltaTotal := int64(total[i]) - int64(total[i-1])
		deltaIdle := int64(idle[i]) - int64(idle[i-1])
		if deltaTotal <= 0 || deltaTotal < deltaIdle {
			panic(fmt.Sprintf("cpu: counter invariant violated for core %d: delta_total=%d delta_idle=%d", core, deltaTotal, deltaIdle))
		}
		perPair := util.SafeDiv(float64(deltaTotal-deltaIdle), float64(deltaTotal))
		avg += perPair / float64(NumSamples-1)
	}
	return util.ClampPercent(avg * 100)
}
