// Package profile provides optional runtime profiling for the quentin
// application.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] to provide runtime profiling
// capabilities with conditional compilation support. Profiling is optional and
// must be enabled at build time using the "pprof" build tag.
//
// When built with profiling disabled (default), all operations are no-ops with
// zero runtime overhead.
//
// # Available Profiling Modes
//
// The following profiling modes are supported when built with the pprof tag:
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// Use [Modes] to retrieve the list of supported modes programmatically.
//
// # Usage
//
// Build with profiling support and select a mode at run time:
//
//	go build -tags pprof .
//	quentin --pprof-mode=cpu run latest
//
// Profiles are written beneath the user cache directory by default; use
// --pprof-dir to redirect them. The resulting files can be inspected
// with the standard tooling:
//
//	go tool pprof cpu.pprof
//
// # Configuration
//
// [Config] is a functional representation of the profiler parameters.
// Options are applied by composition:
//
//	var cfg profile.Config = func() (string, string, bool) {
//		return "", "", false
//	}
//	cfg = profile.WithMode("heap")(cfg)
//	cfg = profile.WithPath("/tmp/profiles")(cfg)
//	defer cfg.Start().Stop()
//
// Start returns a no-op handle when the mode is empty or the binary was
// built without the pprof tag, so callers never need to guard the call.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
