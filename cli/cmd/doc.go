// Package cmd implements the quentin subcommands.
//
// Each subcommand is a struct with kong field tags and a Run method.
// The commands only select files and wire up sinks and resolvers; all
// language semantics live in package lang.
//
//   - [Build] parses and checks a source file, then writes a program
//     package under the build directory.
//   - [Run] executes a source file or a built package, rendering
//     system.log output to the terminal.
//   - [Clear] removes built packages and the in-process parse cache.
package cmd
