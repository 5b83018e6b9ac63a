package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quentinlang/quentin/lang"
	"github.com/quentinlang/quentin/log"
	"github.com/quentinlang/quentin/pkg"
)

// Clear removes build products and cached parse results.
type Clear struct {
	What string `arg:"" help:"What to clear: all, cache, or packages" default:"all" enum:"all,cache,packages" optional:""`
}

// Run executes the clear command.
func (c *Clear) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	if c.What == "all" || c.What == "cache" {
		lang.ClearCache()
		log.InfoContext(ctx, "cleared parse cache")
	}

	if c.What == "all" || c.What == "packages" {
		return clearPackages(ctx)
	}

	return nil
}

// clearPackages removes every program package under the build directory.
// A missing build directory is not an error: there is nothing to clear.
func clearPackages(ctx context.Context) error {
	buildDir, err := pkg.BuildDir()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(buildDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return pkg.ErrBuildDir.Wrap(err)
	}

	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), pkg.PackageExt) {
			continue
		}

		dir := filepath.Join(buildDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			return pkg.ErrBuildDir.Wrap(err)
		}

		removed++
	}

	log.InfoContext(ctx, "cleared packages",
		slog.String("dir", buildDir),
		slog.Int("removed", removed),
	)

	return nil
}
