//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
)

// Version is the semantic version of the quentin module embedded at
// build time. It is printed by the CLI when users invoke --version.
//
//go:embed VERSION
var Version string

const (
	// Name is the canonical command and module identifier used across
	// the project. It appears in help text and default config paths.
	Name = "quentin"
	// Description is a short, human-readable summary of the project used
	// in help output and documentation.
	Description = "Interpreter and build tool for the Q scripting language"

	// SourceExt is the file extension of Q source files.
	SourceExt = ".q"
	// PackageExt is the directory extension of built program packages.
	PackageExt = ".qpkg"
)
