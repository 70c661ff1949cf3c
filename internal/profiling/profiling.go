// Package profiling starts and stops the Go profilers around a long running command.
package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/felixge/fgprof"
	"go.uber.org/multierr"
)

// Paths holds the output file of each profiler. An empty path disables that profiler.
type Paths struct {
	CPU    string
	Mem    string
	Trace  string
	FgProf string
}

// Enabled reports whether any profiler is enabled.
func (p Paths) Enabled() bool {
	return p.CPU != "" || p.Mem != "" || p.Trace != "" || p.FgProf != ""
}

// Start starts the enabled profilers. The returned function stops them,
// writes the heap profile, and closes all files.
// If a profiler fails to start, those already started are stopped.
func Start(paths Paths) (stop func() error, err error) {
	var stops []func() error
	stopAll := func() (err error) {
		// in reverse order of starting
		for i := len(stops) - 1; i >= 0; i-- {
			err = multierr.Append(err, stops[i]())
		}
		return err
	}

	if paths.CPU != "" {
		f, err := os.Create(paths.CPU)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return nil, multierr.Combine(err, f.Close())
		}
		stops = append(stops, func() error {
			pprof.StopCPUProfile()
			return f.Close()
		})
	}

	if paths.FgProf != "" {
		f, err := os.Create(paths.FgProf)
		if err != nil {
			return nil, multierr.Append(err, stopAll())
		}
		fgprofStop := fgprof.Start(f, fgprof.FormatPprof)
		stops = append(stops, func() error {
			return multierr.Combine(fgprofStop(), f.Close())
		})
	}

	if paths.Trace != "" {
		f, err := os.Create(paths.Trace)
		if err != nil {
			return nil, multierr.Append(err, stopAll())
		}
		if err := trace.Start(f); err != nil {
			return nil, multierr.Combine(err, f.Close(), stopAll())
		}
		stops = append(stops, func() error {
			trace.Stop()
			return f.Close()
		})
	}

	return func() error {
		var err error
		if paths.Mem != "" {
			err = writeHeapProfile(paths.Mem)
		}
		return multierr.Append(err, stopAll())
	}, nil
}

func writeHeapProfile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	runtime.GC() // get up-to-date statistics
	return pprof.WriteHeapProfile(f)
}
