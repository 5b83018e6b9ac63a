package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestMake_Defaults(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level, got %v", logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format, got %v", logger.Format())
	}

	logger.Info("hello", slog.String("k", "v"))

	out := buf.String()

	if !strings.Contains(out, "hello") {
		t.Errorf("expected message in output: %q", out)
	}

	if !strings.Contains(out, "k=v") {
		t.Errorf("expected attribute in output: %q", out)
	}
}

func TestZeroValueLoggerDiscards(t *testing.T) {
	var logger Logger

	// Must not panic.
	logger.Trace("t")
	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")
	logger.InfoContext(context.Background(), "ctx")

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level from zero logger")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelWarn))

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()

	if strings.Contains(out, "dropped") {
		t.Errorf("expected info message filtered: %q", out)
	}

	if !strings.Contains(out, "kept") {
		t.Errorf("expected warn message present: %q", out)
	}
}

func TestTraceLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace))

	logger.Trace("deep detail")

	out := buf.String()

	if !strings.Contains(out, "deep detail") {
		t.Errorf("expected trace message present: %q", out)
	}

	if !strings.Contains(out, "TRACE") {
		t.Errorf("expected TRACE level name, got %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON))
	logger.Info("structured", slog.Int("n", 3))

	out := buf.String()

	for _, want := range []string{`"msg":"structured"`, `"n":3`, `"level":"INFO"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in JSON output: %q", want, out)
		}
	}
}

func TestWrapOverridesConfig(t *testing.T) {
	var base, wrapped bytes.Buffer

	logger := Make(&base, WithLevel(LevelError))
	debug := logger.Wrap(WithOutput(&wrapped), WithLevel(LevelDebug))

	debug.Debug("visible")

	if base.Len() != 0 {
		t.Errorf("expected base untouched, got %q", base.String())
	}

	if !strings.Contains(wrapped.String(), "visible") {
		t.Errorf("expected wrapped output, got %q", wrapped.String())
	}

	if logger.Level() != LevelError {
		t.Errorf("expected original logger unchanged")
	}
}

func TestWithAttachesAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf).With(slog.String("component", "parser"))
	logger.Info("attached")

	if !strings.Contains(buf.String(), "component=parser") {
		t.Errorf("expected attached attribute, got %q", buf.String())
	}
}

func TestWithTimeLayout(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		want   func(string) bool
	}{
		{
			name:   "none disables timestamps",
			layout: "none",
			want:   func(s string) bool { return !strings.Contains(s, "time=") },
		},
		{
			name:   "named layout",
			layout: "Kitchen",
			want:   func(s string) bool { return strings.Contains(s, "time=") },
		},
		{
			name:   "custom layout",
			layout: "2006",
			want: func(s string) bool {
				return strings.Contains(s, time.Now().Format("2006"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithTimeLayout(tt.layout))
			logger.Info("stamped")

			if !tt.want(buf.String()) {
				t.Errorf("unexpected output %q", buf.String())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{input: "trace", want: LevelTrace},
		{input: "TRACE", want: LevelTrace},
		{input: "debug", want: LevelDebug},
		{input: "info", want: LevelInfo},
		{input: "WARN", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "nonsense", want: DefaultLevel},
		{input: "", want: DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{input: "json", want: FormatJSON},
		{input: "JSON", want: FormatJSON},
		{input: "text", want: FormatText},
		{input: "anything", want: FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	var names []string
	for name := range Levels() {
		names = append(names, name)
	}

	want := []string{"trace", "debug", "info", "warn", "error"}

	if len(names) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), names)
	}

	for i := range want {
		if names[i] != want[i] {
			t.Errorf("level %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestStyledHandler(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithStyle(true), WithTimeLayout("none"))
	logger.Info("styled line", slog.String("k", "v"), slog.Int("n", 2))

	out := buf.String()

	// Content survives regardless of whether styles render escapes.
	for _, want := range []string{"INFO", "styled line", "k=", "v", "n=", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in styled output: %q", want, out)
		}
	}
}
