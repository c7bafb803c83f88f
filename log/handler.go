package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

const timeFormat = "01-02|15:04:05.000"

// TerminalHandler renders records as one aligned line each:
//
//	INFO [10-15|12:00:00.000] msg  module=hwtest key=value
type TerminalHandler struct {
	mu       *sync.Mutex
	wr       io.Writer
	lvl      slog.Leveler
	useColor bool
	attrs    []slog.Attr
}

// NewTerminalHandlerWithLevel returns a handler writing records at or above lvl to wr.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Leveler, useColor bool) *TerminalHandler {
	return &TerminalHandler{mu: new(sync.Mutex), wr: wr, lvl: lvl, useColor: useColor}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	lvl := LevelAlignedString(r.Level)
	if h.useColor {
		lvl = levelColor(r.Level) + lvl + colorReset
	}
	fmt.Fprintf(&b, "%s[%s] %-40s", lvl, r.Time.Format(timeFormat), r.Message)
	writeAttr := func(a slog.Attr) {
		if h.useColor {
			fmt.Fprintf(&b, " %s%s=%s%v", colorGray, a.Key, colorReset, a.Value.Any())
		} else {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		}
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.wr, b.String())
	return err
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TerminalHandler{mu: h.mu, wr: h.wr, lvl: h.lvl, useColor: h.useColor, attrs: merged}
}

// WithGroup is not supported; groups are flattened.
func (h *TerminalHandler) WithGroup(string) slog.Handler {
	return h
}

func levelColor(l slog.Level) string {
	switch {
	case l >= LevelError:
		return colorRed
	case l >= LevelWarn:
		return colorYellow
	case l >= LevelInfo:
		return colorGreen
	case l >= LevelDebug:
		return colorCyan
	default:
		return colorGray
	}
}

// DiscardHandler returns a handler that drops every record.
func DiscardHandler() slog.Handler {
	return discardHandler{}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
