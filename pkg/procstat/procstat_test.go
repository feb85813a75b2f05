//go:build linux

package procstat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, contents string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stat")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	orig := procStatPath
	procStatPath = path
	t.Cleanup(func() { procStatPath = orig })
}

func TestReadSample_AggregateAndCores(t *testing.T) {
	writeFixture(t, `cpu  100 10 20 5000 30 0 2 0 0 0
cpu0 50 5 10 2500 15 0 1 0 0 0
cpu1 50 5 10 2500 15 0 1 0 0 0
intr 12345 0 0 0
ctxt 9999
`)

	s, err := ReadSample()
	require.NoError(t, err)
	require.Len(t, s.Cores, 3)

	assert.True(t, s.Cores[0].Online)
	assert.Equal(t, uint64(100), s.Cores[0].User)
	assert.Equal(t, uint64(5000), s.Cores[0].Idle)

	assert.True(t, s.Cores[1].Online)
	assert.Equal(t, uint64(50), s.Cores[1].User)
	assert.True(t, s.Cores[2].Online)
}

func TestReadSample_GapBetweenCoresIsOffline(t *testing.T) {
	// cpu2 present but cpu1 missing (e.g. hot-unplugged): core index 2
	// (cores[2], which is "cpu1") must come back offline, not just absent.
	writeFixture(t, `cpu  100 10 20 5000 30 0 2 0 0 0
cpu0 50 5 10 2500 15 0 1 0 0 0
cpu2 50 5 10 2500 15 0 1 0 0 0
`)

	s, err := ReadSample()
	require.NoError(t, err)
	require.Len(t, s.Cores, 4)

	assert.True(t, s.Cores[1].Online, "cpu0")
	assert.False(t, s.Cores[2].Online, "cpu1 missing from this snapshot")
	assert.True(t, s.Cores[3].Online, "cpu2")
}

func TestReadSample_MissingAggregateLineErrors(t *testing.T) {
	writeFixture(t, `intr 12345 0 0 0
ctxt 9999
`)

	_, err := ReadSample()
	assert.ErrorIs(t, err, ErrNoCPULine)
}

func TestReadSample_OldKernelMissingGuestFields(t *testing.T) {
	// pre-2.6.24 kernels have no guest/guest_nice columns at all.
	writeFixture(t, `cpu  100 10 20 5000 30 0 2
`)

	s, err := ReadSample()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Cores[0].SoftIRQ)
	assert.Equal(t, uint64(0), s.Cores[0].Guest)
	assert.Equal(t, uint64(0), s.Cores[0].GuestNice)
}

func TestReadSample_NoSuchFile(t *testing.T) {
	orig := procStatPath
	procStatPath = filepath.Join(t.TempDir(), "does-not-exist")
	t.Cleanup(func() { procStatPath = orig })

	_, err := ReadSample()
	assert.Error(t, err)
}

func TestReadBundle_RespectsCancellation(t *testing.T) {
	writeFixture(t, `cpu  100 10 20 5000 30 0 2 0 0 0
cpu0 50 5 10 2500 15 0 1 0 0 0
`)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	bundle, err := ReadBundle(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// some samples should have been collected before the deadline hit.
	assert.True(t, bundle[0].Cores[0].Online)
}
