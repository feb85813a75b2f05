//go:build linux

package main

import (
	"bufio"
	"os"
	"strings"
)

// detectCgroupKind reports which cgroup hierarchy this host mounts, for
// the startup banner only — a single word is enough context for a human
// reading the log, so this doesn't need to track mountpoints the way a
// real accounting backend selector would.
func detectCgroupKind() string {
	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return "unknown"
	}
	defer f.Close()

	var v1, v2 bool
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.Contains(line, " - cgroup2 "):
			v2 = true
		case strings.Contains(line, " - cgroup "):
			v1 = true
		}
	}

	switch {
	case v1 && v2:
		return "hybrid"
	case v2:
		return "v2"
	case v1:
		return "v1"
	default:
		return "none"
	}
}
