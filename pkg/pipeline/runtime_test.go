package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/cuttrack/pkg/logging"
)

func TestRuntime_RendersAFrameAndShutsDownCleanly(t *testing.T) {
	if testing.Short() {
		t.Skip("exercises the real /proc/stat sampling cadence")
	}

	var logBuf, outBuf bytes.Buffer
	logger := logging.New(logging.NewHandler(&logBuf, false))
	rt := NewRuntime(logger, nil, &outBuf)

	ctx, cancel := context.WithTimeout(context.Background(), 1300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run never returned after context cancellation")
	}

	assert.True(t, strings.HasPrefix(outBuf.String(), "\x1b[2J"), "expected at least one rendered frame")
	assert.Contains(t, logBuf.String(), "[Reader] starting work!")
	assert.Contains(t, logBuf.String(), "[Logger] shutting down...")
}
