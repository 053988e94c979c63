package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), path)
}

func TestSession_AllProfiles(t *testing.T) {
	// Given: every profile requested
	dir := t.TempDir()
	opts := Options{
		CPUPath:   filepath.Join(dir, "cpu.prof"),
		HeapPath:  filepath.Join(dir, "heap.prof"),
		TracePath: filepath.Join(dir, "trace.out"),
	}
	require.True(t, opts.Enabled())

	// When: running some work between Start and Stop
	s, err := Start(opts)
	require.NoError(t, err)

	sum := 0
	for i := 0; i < 1000000; i++ {
		sum += i
	}
	_ = sum

	require.NoError(t, s.Stop())

	// Then: every file has data
	nonEmpty(t, opts.CPUPath)
	nonEmpty(t, opts.HeapPath)
	nonEmpty(t, opts.TracePath)

	// And: stopping again is a no-op
	assert.NoError(t, s.Stop())
}

func TestSession_HeapOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.prof")

	s, err := Start(Options{HeapPath: path})
	require.NoError(t, err)
	require.NoError(t, s.Stop())

	nonEmpty(t, path)
}

func TestStart_BadPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "cpu.prof")

	_, err := Start(Options{CPUPath: missing})

	assert.Error(t, err)
}

func TestStart_TraceFailureStopsCPU(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPUPath:   filepath.Join(dir, "cpu.prof"),
		TracePath: filepath.Join(dir, "no", "trace.out"),
	}

	_, err := Start(opts)
	require.Error(t, err)

	// CPU profiling was released, so it can start again.
	s, err := Start(Options{CPUPath: opts.CPUPath})
	require.NoError(t, err)
	require.NoError(t, s.Stop())
}

func TestOptions_Disabled(t *testing.T) {
	assert.False(t, Options{}.Enabled())

	var s *Session
	assert.NoError(t, s.Stop())
}
