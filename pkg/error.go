package pkg

// Sentinel errors shared by the CLI and its subcommands. These can be
// tested with errors.Is for reliable error checking.

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error represents a chain of errors.
type Error []error

// ErrReadStdin is returned when reading from standard input fails.
var ErrReadStdin = MakeErrorf("failed to read stdin")

// ErrNoSource is returned when a command requires a source file and
// none was provided or found.
var ErrNoSource = MakeErrorf("no source file")

// ErrNoPackage is returned when no built package matches a run request,
// for example `run latest` with an empty build directory.
var ErrNoPackage = MakeErrorf("no built package found")

// ErrBuildDir is returned when the build directory cannot be created,
// read, or cleared.
var ErrBuildDir = MakeErrorf("build directory error")

// ErrManifest is returned when a package manifest cannot be written or
// decoded. It should be wrapped with the underlying YAML error.
var ErrManifest = MakeErrorf("package manifest error")

// ErrStalePackage is returned when a package's recorded source digest
// no longer matches the source file it was built from.
var ErrStalePackage = MakeErrorf("package is stale")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", from innermost to outermost.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
func (e Error) Wrap(err ...error) Error {
	return append(e, err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(e, fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether target is a sentinel chain sharing this chain's
// innermost error, so wrapped copies still match their sentinel.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(e) == 0 {
		return false
	}

	return errors.Is(e[0], t[0])
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
