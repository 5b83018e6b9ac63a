package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quentinlang/quentin/lang"
)

// Terminal styles for rendered system.log lines.
//
//nolint:gochecknoglobals
var (
	infoTag = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnTag = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errTag  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	argText = lipgloss.NewStyle().Faint(true)
)

// consoleSink renders system.log output as "[level] message" lines,
// with the level tag colored by severity and any arguments{} values
// appended dimly after the message.
type consoleSink struct {
	w io.Writer
}

// Emit implements lang.Sink.
func (s consoleSink) Emit(_ context.Context, entry lang.LogEntry) error {
	tag := "[" + entry.Level.String() + "]"

	switch entry.Level {
	case lang.LevelWarn:
		tag = warnTag.Render(tag)
	case lang.LevelError:
		tag = errTag.Render(tag)
	default:
		tag = infoTag.Render(tag)
	}

	line := tag + " " + entry.Message

	if len(entry.Args) > 0 {
		parts := make([]string, len(entry.Args))
		for i, v := range entry.Args {
			parts[i] = v.String()
		}

		line += " " + argText.Render("("+strings.Join(parts, ", ")+")")
	}

	_, err := fmt.Fprintln(s.w, line)

	return err
}
