package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/quentinlang/quentin/lang"
	"github.com/quentinlang/quentin/pkg"
)

// File names inside a program package directory.
const (
	programFile  = "program.json"
	manifestFile = "manifest.yaml"
)

// manifest records how a program package was produced. It is written
// next to the compiled program and consulted by the run command to
// detect stale packages.
type manifest struct {
	Name       string    `yaml:"name"`
	Version    string    `yaml:"version"`
	Source     string    `yaml:"source,omitempty"`
	Digest     string    `yaml:"digest"`
	BuiltAt    time.Time `yaml:"built_at"`
	Statements int       `yaml:"statements"`
	Functions  []string  `yaml:"functions,omitempty"`
}

// packageDir returns the directory of the named program package.
func packageDir(buildDir, name string) string {
	return filepath.Join(buildDir, name+pkg.PackageExt)
}

// writeManifest encodes m as YAML into the package directory.
func writeManifest(dir string, m manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return pkg.ErrManifest.Wrap(err)
	}

	err = os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644)
	if err != nil {
		return pkg.ErrManifest.Wrap(err)
	}

	return nil
}

// readManifest decodes the manifest of the package directory.
func readManifest(dir string) (manifest, error) {
	var m manifest

	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return m, pkg.ErrManifest.Wrap(err)
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, pkg.ErrManifest.Wrap(err)
	}

	return m, nil
}

// latestPackage returns the most recently modified package directory
// under buildDir, or ErrNoPackage when none exist.
func latestPackage(buildDir string) (string, error) {
	entries, err := os.ReadDir(buildDir)
	if err != nil {
		return "", pkg.ErrNoPackage.Wrap(err)
	}

	var (
		latest string
		mtime  time.Time
	)

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), pkg.PackageExt) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if latest == "" || info.ModTime().After(mtime) {
			latest = filepath.Join(buildDir, entry.Name())
			mtime = info.ModTime()
		}
	}

	if latest == "" {
		return "", pkg.ErrNoPackage.Wrapf("empty build directory %s", buildDir)
	}

	return latest, nil
}

// checkFresh reports ErrStalePackage when the manifest's recorded source
// file still exists and its current digest differs from the one the
// package was built from. A missing or unreadable source is not stale:
// packages must stay runnable after their source moves away.
func checkFresh(m manifest) error {
	if m.Source == "" || m.Digest == "" {
		return nil
	}

	data, err := os.ReadFile(m.Source)
	if err != nil {
		return nil
	}

	if lang.Digest(data) != m.Digest {
		return pkg.ErrStalePackage.Wrapf(
			"source %s changed since build", m.Source)
	}

	return nil
}
