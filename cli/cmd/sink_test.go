package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinlang/quentin/lang"
)

func TestConsoleSinkLevels(t *testing.T) {
	for _, level := range []lang.LogLevel{
		lang.LevelInfo, lang.LevelWarn, lang.LevelError,
	} {
		var buf bytes.Buffer

		sink := consoleSink{w: &buf}

		err := sink.Emit(context.Background(), lang.LogEntry{
			Level:   level,
			Message: "something happened",
		})
		require.NoError(t, err)

		out := buf.String()

		assert.Contains(t, out, "["+level.String()+"]")
		assert.Contains(t, out, "something happened")
		assert.True(t, strings.HasSuffix(out, "\n"))
	}
}

func TestConsoleSinkArguments(t *testing.T) {
	var buf bytes.Buffer

	sink := consoleSink{w: &buf}

	err := sink.Emit(context.Background(), lang.LogEntry{
		Level:   lang.LevelError,
		Message: "stats",
		Args:    []lang.Value{lang.Num(7), lang.Str("x")},
	})
	require.NoError(t, err)

	out := buf.String()

	assert.Contains(t, out, "stats")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, `"x"`)
}
