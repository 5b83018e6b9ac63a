package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quentinlang/quentin/lang"
)

// includeResolver resolves system.include statements against the
// filesystem: each include source is a sibling file interpreted once,
// and the requested remote name is looked up among its functions and
// globals. Included files may include further files; cycles fail
// resolution.
type includeResolver struct {
	base    string // directory include sources are resolved against
	sink    lang.Sink
	loaded  map[string]*lang.Interp
	loading map[string]struct{}
}

// newIncludeResolver creates a resolver rooted at the given directory.
// Log output of included files is forwarded to sink.
func newIncludeResolver(base string, sink lang.Sink) *includeResolver {
	return &includeResolver{
		base:    base,
		sink:    sink,
		loaded:  make(map[string]*lang.Interp),
		loading: make(map[string]struct{}),
	}
}

// Resolve implements lang.Resolver.
func (r *includeResolver) Resolve(
	ctx context.Context,
	spec lang.ImportSpec,
) (lang.Value, error) {
	in, err := r.load(ctx, spec.Source)
	if err != nil {
		return lang.Null(), err
	}

	if fn, ok := in.Function(spec.Remote); ok {
		return lang.FuncRef(fn), nil
	}

	if v, ok := in.Global(spec.Remote); ok {
		return v, nil
	}

	return lang.Null(), lang.ErrResolution.
		With(
			slog.String("source", spec.Source),
			slog.String("name", spec.Remote),
			slog.String("issue", "name not exported"),
		)
}

// load interprets the include source once and memoizes the result, so
// every binding from the same file shares one interpreter state.
func (r *includeResolver) load(
	ctx context.Context,
	source string,
) (*lang.Interp, error) {
	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.base, path)
	}

	path = filepath.Clean(path)

	if in, ok := r.loaded[path]; ok {
		return in, nil
	}

	if _, busy := r.loading[path]; busy {
		return nil, lang.ErrResolution.
			With(
				slog.String("source", source),
				slog.String("issue", "include cycle"),
			)
	}

	r.loading[path] = struct{}{}
	defer delete(r.loading, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lang.ErrResolution.Wrap(err).
			With(slog.String("source", source))
	}

	prog, err := lang.ParseCached(ctx, string(data))
	if err != nil {
		return nil, lang.ErrResolution.Wrap(err).
			With(slog.String("source", source))
	}

	// Nested includes resolve relative to the included file, sharing
	// the memoization and cycle state of this resolver.
	child := lang.NewInterp(
		lang.WithSink(r.sink),
		lang.WithResolver(&includeResolver{
			base:    filepath.Dir(path),
			sink:    r.sink,
			loaded:  r.loaded,
			loading: r.loading,
		}),
	)

	if err := child.Run(ctx, prog); err != nil {
		return nil, lang.ErrResolution.Wrap(err).
			With(slog.String("source", source))
	}

	r.loaded[path] = child

	return child, nil
}
