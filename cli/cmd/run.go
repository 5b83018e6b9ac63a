package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quentinlang/quentin/lang"
	"github.com/quentinlang/quentin/log"
	"github.com/quentinlang/quentin/pkg"
)

// latestTarget selects the most recently built package.
const latestTarget = "latest"

// Run executes a program: either a source file directly, or a package
// previously produced by build. The bare form runs the latest package.
type Run struct {
	Target string `arg:"" help:"Source file, package name, or 'latest'" default:"latest" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	switch {
	case r.Target == stdinSource,
		filepath.Ext(r.Target) == pkg.SourceExt:
		return r.runSource(ctx, r.Target)

	case r.Target == latestTarget:
		buildDir, err := pkg.BuildDir()
		if err != nil {
			return err
		}

		dir, err := latestPackage(buildDir)
		if err != nil {
			return err
		}

		return r.runPackage(ctx, dir)

	default:
		return r.runNamed(ctx, r.Target)
	}
}

// runNamed resolves a bare name to a built package first, then to a
// source file with the source extension appended.
func (r *Run) runNamed(ctx context.Context, name string) error {
	buildDir, err := pkg.BuildDir()
	if err != nil {
		return err
	}

	dir := packageDir(buildDir, name)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return r.runPackage(ctx, dir)
	}

	src := name + pkg.SourceExt
	if _, err := os.Stat(src); err == nil {
		return r.runSource(ctx, src)
	}

	return pkg.ErrNoPackage.Wrapf("no package or source named %q", name)
}

// runSource parses and executes a source file without building it.
func (r *Run) runSource(ctx context.Context, src string) error {
	file, err := openSource(src)
	if err != nil {
		return err
	}
	defer file.Close()

	prog, err := lang.ParseReader(
		ctx,
		file,
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "run"),
				slog.String("source", src),
			)
	}

	base := "."
	if src != stdinSource {
		base = filepath.Dir(src)
	}

	return r.interpret(ctx, prog, base, src)
}

// runPackage decodes and executes a built program package.
func (r *Run) runPackage(ctx context.Context, dir string) error {
	m, err := readManifest(dir)
	if err != nil {
		return err
	}

	// A stale package still runs; the mismatch is only reported.
	if err := checkFresh(m); errors.Is(err, pkg.ErrStalePackage) {
		log.WarnContext(ctx, "package is stale",
			slog.String("package", dir),
			slog.String("source", m.Source),
		)
	}

	data, err := os.ReadFile(filepath.Join(dir, programFile))
	if err != nil {
		return pkg.ErrNoPackage.Wrap(err)
	}

	prog, err := lang.UnmarshalProgram(data)
	if err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "run"),
				slog.String("package", dir),
			)
	}

	// Includes resolve relative to where the package was built from.
	base := "."
	if m.Source != "" {
		base = filepath.Dir(m.Source)
	}

	return r.interpret(ctx, prog, base, dir)
}

// interpret wires the terminal sink and filesystem resolver, then runs
// the program.
func (r *Run) interpret(
	ctx context.Context,
	prog *lang.Program,
	base, origin string,
) error {
	sink := consoleSink{w: stdout(ctx)}

	in := lang.NewInterp(
		lang.WithLogger(log.Default()),
		lang.WithSink(sink),
		lang.WithResolver(newIncludeResolver(base, sink)),
	)

	if err := in.Run(ctx, prog); err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "run"),
				slog.String("origin", origin),
			)
	}

	return nil
}
