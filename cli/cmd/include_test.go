package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinlang/quentin/lang"
)

// newTestResolver creates a resolver rooted at dir with a buffered sink.
func newTestResolver(t *testing.T, dir string) (*includeResolver, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	return newIncludeResolver(dir, consoleSink{w: &buf}), &buf
}

func writeFile(t *testing.T, dir, name, source string) {
	t.Helper()

	require.NoError(t,
		os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644))
}

func TestIncludeResolverVariable(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "util.q", `
system.init{"type": variable, "name": answer, "datatype": number, "value": 42};
`)

	r, _ := newTestResolver(t, dir)

	v, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias:  "answer",
		Remote: "answer",
		Source: "util.q",
	})
	require.NoError(t, err)

	assert.Equal(t, lang.Num(42), v)
}

func TestIncludeResolverFunction(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "util.q", `
function shout(text in string) {
	system.log{"type": warn, "message": text & "!"};
};
`)

	r, _ := newTestResolver(t, dir)

	v, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias:  "yell",
		Remote: "shout",
		Source: "util.q",
	})
	require.NoError(t, err)

	require.Equal(t, lang.KindFunc, v.Kind)
	assert.Equal(t, "shout", v.Fn.Name)
}

func TestIncludeResolverSharedState(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "util.q", `
system.init{"type": variable, "name": a, "datatype": number, "value": 1};
system.init{"type": variable, "name": b, "datatype": number, "value": 2};
`)

	r, _ := newTestResolver(t, dir)

	_, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias: "a", Remote: "a", Source: "util.q",
	})
	require.NoError(t, err)

	// Second binding from the same file reuses the loaded interpreter.
	require.Len(t, r.loaded, 1)

	v, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias: "b", Remote: "b", Source: "util.q",
	})
	require.NoError(t, err)

	assert.Equal(t, lang.Num(2), v)
	assert.Len(t, r.loaded, 1)
}

func TestIncludeResolverMissingName(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "util.q", `
system.init{"type": variable, "name": a, "datatype": number, "value": 1};
`)

	r, _ := newTestResolver(t, dir)

	_, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias: "x", Remote: "x", Source: "util.q",
	})

	assert.ErrorIs(t, err, lang.ErrResolution)
}

func TestIncludeResolverMissingFile(t *testing.T) {
	r, _ := newTestResolver(t, t.TempDir())

	_, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias: "x", Remote: "x", Source: "absent.q",
	})

	assert.ErrorIs(t, err, lang.ErrResolution)
}

func TestIncludeResolverCycle(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "a.q", `
system.include{"name": vb, "from": "b.q"};
system.init{"type": variable, "name": va, "datatype": number, "value": 1};
`)
	writeFile(t, dir, "b.q", `
system.include{"name": va, "from": "a.q"};
system.init{"type": variable, "name": vb, "datatype": number, "value": 2};
`)

	r, _ := newTestResolver(t, dir)

	_, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias: "va", Remote: "va", Source: "a.q",
	})

	assert.ErrorIs(t, err, lang.ErrResolution)
}

func TestIncludeResolverNested(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// inner.q lives next to outer.q, not next to the root source, so the
	// nested include must resolve relative to the included file.
	writeFile(t, sub, "inner.q", `
system.init{"type": variable, "name": deep, "datatype": string, "value": "ok"};
`)
	writeFile(t, sub, "outer.q", `
system.include{"name": deep, "from": "inner.q"};
system.init{"type": variable, "name": relay, "datatype": string, "value": deep};
`)

	r, _ := newTestResolver(t, dir)

	v, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias:  "relay",
		Remote: "relay",
		Source: filepath.Join("sub", "outer.q"),
	})
	require.NoError(t, err)

	assert.Equal(t, lang.Str("ok"), v)
}

func TestIncludeResolverForwardsLogs(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "noisy.q", `
system.log{"type": info, "message": "loading noisy"};
system.init{"type": variable, "name": v, "datatype": number, "value": 1};
`)

	r, buf := newTestResolver(t, dir)

	_, err := r.Resolve(context.Background(), lang.ImportSpec{
		Alias: "v", Remote: "v", Source: "noisy.q",
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "loading noisy")
}
