package term

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/cuttrack/pkg/cpu"
)

func TestRender_FormatsAggregateAndCores(t *testing.T) {
	var buf bytes.Buffer
	u := cpu.Usage{12.345, 0, 100}

	require.NoError(t, Render(&buf, u))

	got := buf.String()
	assert.Equal(t, "\x1b[2Jtotal: 12.35%\ncpu 0: 0.00%\ncpu 1: 100.00%\n", got)
}

func TestRender_UnknownCore(t *testing.T) {
	var buf bytes.Buffer
	u := cpu.Usage{50, cpu.Unknown}

	require.NoError(t, Render(&buf, u))

	assert.Equal(t, "\x1b[2Jtotal: 50.00%\ncpu 0: UNKNOWN\n", buf.String())
}

func TestRender_EmptyUsageOnlyClears(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, cpu.Usage{}))
	assert.Equal(t, "\x1b[2J", buf.String())
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) { return 0, assert.AnError }

func TestRender_PropagatesWriteError(t *testing.T) {
	err := Render(errWriter{}, cpu.Usage{1})
	assert.ErrorIs(t, err, assert.AnError)
}
