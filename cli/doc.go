// Package cli contains the command line interface for quentin.
//
// # Usage
//
// The CLI exposes three subcommands built on the lang package:
//
//	quentin build [file]    # compile source into a program package
//	quentin run [target]    # run a source file, package, or 'latest'
//	quentin clear [what]    # drop built packages and cached parses
//
// Logging and profiling are configured through grouped flags:
//
//	quentin --log-level=debug --pprof-mode=cpu run latest
//
// # Configuration Loader
//
// The package includes a Kong configuration loader ([resolve]) that
// reads config files written as Q programs and converts their global
// variables to Kong flag values. The default config file location is
// the user config directory, e.g. ~/.config/quentin/config.q.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-style: Enable styled terminal output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/quentin/pprof)
//
// # Examples
//
//	# Build every source in the working directory
//	quentin build
//
//	# Build one file and print the compiled program
//	quentin build main.q --log
//
//	# Run the most recently built package
//	quentin run latest
//
//	# Remove all build products and cached parses
//	quentin clear
package cli
