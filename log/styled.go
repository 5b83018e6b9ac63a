package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by the styled text handler. Keys are dimmed so the values
// carry the visual weight; levels are colored by severity.
var (
	styleKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleTime  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleNum   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleTrue  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFalse = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	levelStyles = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// styledHandler is a colorized text handler for interactive terminals.
type styledHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func newStyledHandler(w io.Writer, opts *slog.HandlerOptions) *styledHandler {
	return &styledHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
	}
}

func (h *styledHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *styledHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		buf.WriteString(styleTime.Render(r.Time.Format("15:04:05.000")))
		buf.WriteByte(' ')
	}

	level := Level(r.Level)

	style, ok := levelStyles[level]
	if !ok {
		style = styleValue
	}

	buf.WriteString(style.Render(strings.ToUpper(level.String())))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	prefix := strings.Join(h.groups, ".")

	for _, a := range h.attrs {
		h.writeAttr(buf, prefix, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *styledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &clone
}

func (h *styledHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &clone
}

func (h *styledHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, member := range a.Value.Group() {
			member.Key = key + "." + member.Key
			h.writeAttr(buf, "", member)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(styleKey.Render(key + "="))
	h.writeValue(buf, a.Value)
}

func (h *styledHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindInt64:
		buf.WriteString(styleNum.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(styleNum.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(styleNum.Render(
			strconv.FormatFloat(v.Float64(), 'g', -1, 64)))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(styleTrue.Render("true"))
		} else {
			buf.WriteString(styleFalse.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(styleNum.Render(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(styleTime.Render(v.Time().String()))

	default:
		buf.WriteString(styleValue.Render(v.String()))
	}
}
