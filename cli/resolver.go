package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/quentinlang/quentin/lang"
)

// resolve returns a [kong.ConfigurationLoader] that reads config files
// written as Q programs.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.q")
//
// The config program is interpreted with a silent log sink, and every
// global variable it declares becomes one flag value:
//   - Flag names with hyphens (e.g., "log-level") should use underscores
//     in the config file (e.g., "log_level")
//   - Strings, numbers, and booleans map to their flag values
//   - Arrays map to repeated flag values
//   - Null and function values are ignored
//
// Example Q config file:
//
//	system.init{"type": variable, "name": log_level,
//	            "datatype": string, "value": "debug"};
//	system.init{"type": variable, "name": log_style,
//	            "datatype": bool, "value": true};
//
// This configuration will be applied to Kong flags:
//
//	--log-level=debug
//	--log-style=true
//
// Command-line flags override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		// Parse the config file (cached after first parse)
		prog, err := lang.ParseReader(ctx, r)
		if err != nil {
			// Parse error - return empty config
			return config{}, nil
		}

		// Interpret silently: config programs should not print
		in := lang.NewInterp(lang.WithSink(quietSink{}))

		if err := in.Run(ctx, prog); err != nil {
			// Runtime error - return empty config
			return config{}, nil
		}

		flags := make(config)

		for name, value := range in.Globals() {
			if native, ok := toNative(value); ok {
				flags[name] = native
			}
		}

		return flags, nil
	}
}

// quietSink drops system.log output while loading configuration.
type quietSink struct{}

// Emit implements lang.Sink.
func (quietSink) Emit(context.Context, lang.LogEntry) error { return nil }

// config implements [kong.Resolver] for Q language configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed - the config was already interpreted successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but Q identifiers
	// may use underscores. Try both forms.
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	// Look up the value in our config
	if value, ok := r[name]; ok {
		return value, nil
	}

	// Try underscore variant
	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// toNative converts an interpreter value to the representation Kong
// expects for flag resolution. Numbers become strings so Kong can parse
// them into the flag's declared type.
func toNative(v lang.Value) (any, bool) {
	switch v.Kind {
	case lang.KindStr:
		return v.Str, true

	case lang.KindNum:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), true

	case lang.KindBool:
		return v.Bool, true

	case lang.KindArray:
		elems := make([]any, 0, len(v.Arr))

		for _, elem := range v.Arr {
			if native, ok := toNative(elem); ok {
				elems = append(elems, native)
			}
		}

		return elems, true

	default:
		// Null and function values have no flag representation
		return nil, false
	}
}
