package lang

import (
	"context"

	"github.com/quentinlang/quentin/log"
)

// Option applies a configuration option to the parser or interpreter.
type Option func(options) options

// options carries the shared configuration of Parse and Interp. The zero
// value is usable: tracing is discarded, log statements render to the
// default sink, and programs with include statements fail resolution.
type options struct {
	logger   log.Logger
	sink     Sink
	resolver Resolver
}

// makeOptions applies opts over the default configuration.
func makeOptions(opts ...Option) options {
	var cfg options

	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithLogger sets the diagnostic logger used for parse and execution
// tracing. This is distinct from the sink: the logger carries internal
// diagnostics, the sink carries the program's own system.log output.
func WithLogger(logger log.Logger) Option {
	return func(cfg options) options {
		cfg.logger = logger

		return cfg
	}
}

// WithSink directs system.log output to the given sink.
func WithSink(sink Sink) Option {
	return func(cfg options) options {
		cfg.sink = sink

		return cfg
	}
}

// WithResolver sets the module resolver consulted for system.include
// statements before execution begins.
func WithResolver(resolver Resolver) Option {
	return func(cfg options) options {
		cfg.resolver = resolver

		return cfg
	}
}

// LogEntry is one system.log emission handed to the sink: the severity
// tag, the rendered message text, and the evaluated arguments{} values
// in source order.
type LogEntry struct {
	Level   LogLevel
	Message string
	Args    []Value
	Pos     Position
}

// Sink receives system.log output. Implementations decide rendering and
// destination; the interpreter only evaluates and forwards.
type Sink interface {
	Emit(ctx context.Context, entry LogEntry) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, entry LogEntry) error

// Emit implements Sink.
func (f SinkFunc) Emit(ctx context.Context, entry LogEntry) error {
	return f(ctx, entry)
}

// Resolver materializes one system.include binding. A returned function
// value is registered in the function table under the import's alias; any
// other value becomes a global variable under the alias. Resolution
// failures abort the run before any statement executes.
type Resolver interface {
	Resolve(ctx context.Context, spec ImportSpec) (Value, error)
}
