package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flagNamed builds a minimal kong.Flag for resolver lookups.
func flagNamed(name string) *kong.Flag {
	return &kong.Flag{Value: &kong.Value{Name: name}}
}

const qConfig = `
system.init{"type": variable, "name": log_level, "datatype": string, "value": "debug"};
system.init{"type": variable, "name": log_style, "datatype": bool, "value": false};
system.init{"type": variable, "name": retries, "datatype": number, "value": 3};
system.init{"type": variable, "name": unset, "datatype": string};
`

func TestResolveQConfig(t *testing.T) {
	loader := resolve(context.Background())

	resolver, err := loader(strings.NewReader(qConfig))
	require.NoError(t, err)

	require.NoError(t, resolver.Validate(nil))

	// Hyphenated flag names map onto underscore identifiers.
	v, err := resolver.Resolve(nil, nil, flagNamed("log-level"))
	require.NoError(t, err)
	assert.Equal(t, "debug", v)

	v, err = resolver.Resolve(nil, nil, flagNamed("log-style"))
	require.NoError(t, err)
	assert.Equal(t, false, v)

	// Numbers resolve as strings so Kong can coerce them.
	v, err = resolver.Resolve(nil, nil, flagNamed("retries"))
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	// Null values have no flag representation.
	v, err = resolver.Resolve(nil, nil, flagNamed("unset"))
	require.NoError(t, err)
	assert.Nil(t, v)

	// Unknown flags fall through to Kong defaults.
	v, err = resolver.Resolve(nil, nil, flagNamed("absent"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestResolveQConfigComputed(t *testing.T) {
	loader := resolve(context.Background())

	// Config values may be computed; log output stays silent.
	resolver, err := loader(strings.NewReader(`
system.init{"type": variable, "name": base, "datatype": string, "value": "info"};
system.init{"type": variable, "name": log_level, "datatype": string, "value": base};
system.log{"type": info, "message": "configured"};
`))
	require.NoError(t, err)

	v, err := resolver.Resolve(nil, nil, flagNamed("log-level"))
	require.NoError(t, err)
	assert.Equal(t, "info", v)
}

func TestResolveBadConfigIsEmpty(t *testing.T) {
	loader := resolve(context.Background())

	// A malformed config file never blocks CLI startup.
	resolver, err := loader(strings.NewReader(`system.init{"name": v`))
	require.NoError(t, err)

	v, err := resolver.Resolve(nil, nil, flagNamed("log-level"))
	require.NoError(t, err)
	assert.Nil(t, v)
}
