package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinlang/quentin/lang"
	"github.com/quentinlang/quentin/pkg"
)

func TestRunSource(t *testing.T) {
	t.Chdir(t.TempDir())

	src := writeSource(t, "greet.q", greetSource)

	r := Run{Target: src}

	assert.NoError(t, r.Run(context.Background()))
}

func TestRunLatestAfterBuild(t *testing.T) {
	t.Chdir(t.TempDir())

	src := writeSource(t, "greet.q", greetSource)

	b := Build{Source: src}
	require.NoError(t, b.Run(context.Background()))

	r := Run{Target: latestTarget}

	assert.NoError(t, r.Run(context.Background()))
}

func TestRunNamedPackage(t *testing.T) {
	t.Chdir(t.TempDir())

	src := writeSource(t, "greet.q", greetSource)

	b := Build{Source: src}
	require.NoError(t, b.Run(context.Background()))

	r := Run{Target: "greet"}

	assert.NoError(t, r.Run(context.Background()))
}

func TestRunNamedSource(t *testing.T) {
	t.Chdir(t.TempDir())

	writeSource(t, "greet.q", greetSource)

	// No package was built, so the bare name falls back to greet.q.
	r := Run{Target: "greet"}

	assert.NoError(t, r.Run(context.Background()))
}

func TestRunMissingTarget(t *testing.T) {
	t.Chdir(t.TempDir())

	r := Run{Target: "nothing"}

	assert.ErrorIs(t, r.Run(context.Background()), pkg.ErrNoPackage)
}

func TestRunLatestEmptyBuildDir(t *testing.T) {
	t.Chdir(t.TempDir())

	r := Run{Target: latestTarget}

	assert.ErrorIs(t, r.Run(context.Background()), pkg.ErrNoPackage)
}

func TestRunRuntimeError(t *testing.T) {
	t.Chdir(t.TempDir())

	src := writeSource(t, "boom.q",
		`system.log{"type": info, "message": missing};`)

	r := Run{Target: src}

	assert.ErrorIs(t, r.Run(context.Background()), lang.ErrUndefinedVariable)
}

func TestRunSourceWithInclude(t *testing.T) {
	t.Chdir(t.TempDir())

	writeSource(t, "util.q", `
system.init{"type": variable, "name": prefix, "datatype": string, "value": ">> "};

function shout(text in string) {
	system.log{"type": warn, "message": text & "!"};
};
`)

	src := writeSource(t, "main.q", `
system.include{"name": prefix, "from": "util.q"};
system.include{"name": shout, "from": "util.q", "as": yell};

system.log{"type": info, "message": prefix & "starting"};
system.exec{"type": function, "name": yell, parameters{text => "done"}};
`)

	r := Run{Target: src}

	assert.NoError(t, r.Run(context.Background()))
}

func TestRunIncludeMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	src := writeSource(t, "main.q",
		`system.include{"name": x, "from": "absent.q"};`)

	r := Run{Target: src}

	assert.ErrorIs(t, r.Run(context.Background()), lang.ErrResolution)
}
