package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/quentinlang/quentin/lang"
	"github.com/quentinlang/quentin/log"
	"github.com/quentinlang/quentin/pkg"
)

// Build compiles source files into program packages under the build
// directory. Each package holds the program encoded as JSON plus a YAML
// manifest recording the source digest and build metadata.
type Build struct {
	Source string `arg:"" help:"Source file to build, or '-' for stdin; all sources in the working directory when omitted" optional:""`
	Log    bool   `       help:"Print the compiled program as JSON to stdout"`
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	buildDir, err := pkg.BuildDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return pkg.ErrBuildDir.Wrap(err)
	}

	sources := []string{b.Source}

	if b.Source == "" {
		wd, err := os.Getwd()
		if err != nil {
			return pkg.ErrNoSource.Wrap(err)
		}

		sources, err = findSources(wd)
		if err != nil {
			return err
		}
	}

	for _, src := range sources {
		if err := b.buildOne(ctx, src, buildDir); err != nil {
			return err
		}
	}

	return nil
}

// buildOne compiles a single source file into its package directory.
func (b *Build) buildOne(ctx context.Context, src, buildDir string) error {
	file, err := openSource(src)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if src == stdinSource {
			return pkg.ErrReadStdin.Wrap(err)
		}

		return pkg.ErrNoSource.Wrap(err)
	}

	prog, err := lang.ParseCached(
		ctx,
		string(data),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "build"),
				slog.String("source", src),
			)
	}

	if err := lang.Analyze(prog); err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "build"),
				slog.String("source", src),
			)
	}

	artifact, err := lang.MarshalProgram(prog)
	if err != nil {
		return err
	}

	name := stem(src)
	dir := packageDir(buildDir, name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pkg.ErrBuildDir.Wrap(err)
	}

	err = os.WriteFile(filepath.Join(dir, programFile), artifact, 0o644)
	if err != nil {
		return pkg.ErrBuildDir.Wrap(err)
	}

	if err := writeManifest(dir, makeManifest(name, src, data, prog)); err != nil {
		return err
	}

	if b.Log {
		fmt.Fprintln(stdout(ctx), string(artifact))
	}

	log.InfoContext(ctx, "built package",
		slog.String("name", name),
		slog.String("dir", dir),
		slog.Int("statements", len(prog.Statements)),
	)

	return nil
}

// makeManifest assembles the manifest for one compiled source.
func makeManifest(name, src string, data []byte, prog *lang.Program) manifest {
	m := manifest{
		Name:       name,
		Version:    pkg.Version,
		Digest:     lang.Digest(data),
		BuiltAt:    time.Now().UTC(),
		Statements: len(prog.Statements),
	}

	// Stdin has no durable identity to record.
	if src != stdinSource {
		if abs, err := filepath.Abs(src); err == nil {
			m.Source = abs
		} else {
			m.Source = src
		}
	}

	for _, fn := range prog.Functions() {
		m.Functions = append(m.Functions, fn.Name)
	}

	return m
}
