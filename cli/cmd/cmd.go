package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/quentinlang/quentin/pkg"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the output stream bound by the CLI driver, falling
// back to os.Stdout when the command runs outside kong (tests).
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// openSource opens the named source file, or stdin for "-". The caller
// owns the returned closer.
func openSource(path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, pkg.ErrNoSource.Wrap(err)
	}

	return file, nil
}

// stem returns the package stem for a source path: the base name with
// the source extension removed. Stdin builds under the program name.
func stem(path string) string {
	if path == stdinSource {
		return pkg.Name
	}

	return strings.TrimSuffix(filepath.Base(path), pkg.SourceExt)
}

// findSources returns every source file in dir, sorted by name.
func findSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pkg.ErrNoSource.Wrap(err)
	}

	var sources []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), pkg.SourceExt) {
			continue
		}

		sources = append(sources, filepath.Join(dir, entry.Name()))
	}

	if len(sources) == 0 {
		return nil, pkg.ErrNoSource.Wrapf("no %s files in %s", pkg.SourceExt, dir)
	}

	return sources, nil
}
