// Package profiling captures CPU, heap and execution-trace profiles around
// a CLI run, for looking at long cascades over large registries.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options names the profile files to write. Empty paths are skipped.
type Options struct {
	CPUPath   string
	HeapPath  string
	TracePath string
}

// Enabled reports whether any profile is requested.
func (o Options) Enabled() bool {
	return o.CPUPath != "" || o.HeapPath != "" || o.TracePath != ""
}

// Session is a running set of profiles started by Start.
type Session struct {
	opts      Options
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and tracing as requested by opts. The heap
// profile is written by Stop.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}

	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create CPU profile file: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to start CPU profile: %w", err)
		}
		s.cpuFile = f
	}

	if opts.TracePath != "" {
		f, err := os.Create(opts.TracePath)
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("failed to start trace: %w", err)
		}
		s.traceFile = f
	}

	return s, nil
}

// Stop ends CPU profiling and tracing and writes the heap profile.
// Calling Stop more than once is safe.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}

	var errs []error
	if err := s.stopCPU(); err != nil {
		errs = append(errs, err)
	}
	if s.traceFile != nil {
		trace.Stop()
		if err := s.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close trace file: %w", err))
		}
		s.traceFile = nil
	}
	if s.opts.HeapPath != "" {
		if err := writeHeap(s.opts.HeapPath); err != nil {
			errs = append(errs, err)
		}
		s.opts.HeapPath = ""
	}
	return errors.Join(errs...)
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpuFile.Close()
	s.cpuFile = nil
	if err != nil {
		return fmt.Errorf("failed to close CPU profile: %w", err)
	}
	return nil
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heap profile file: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Collect first so the profile shows live objects only.
	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	return nil
}
