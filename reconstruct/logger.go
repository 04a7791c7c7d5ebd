package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// consoleHandler prints records as "[time] [attr] message" lines instead of
// slog's key=value text format. Level filtering is delegated to a wrapped
// text handler.
type consoleHandler struct {
	inner slog.Handler
	out   io.Writer
	mu    *sync.Mutex
}

func newConsoleHandler(out io.Writer, opts *slog.HandlerOptions) *consoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &consoleHandler{
		inner: slog.NewTextHandler(out, opts),
		out:   out,
		mu:    &sync.Mutex{},
	}
}

func (h *consoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{inner: h.inner.WithAttrs(attrs), out: h.out, mu: h.mu}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	return &consoleHandler{inner: h.inner.WithGroup(name), out: h.out, mu: h.mu}
}

func (h *consoleHandler) Handle(ctx context.Context, r slog.Record) error {
	var line strings.Builder
	line.WriteString(r.Time.Format("[2006/01/02 15:04:05]"))
	r.Attrs(func(a slog.Attr) bool {
		line.WriteString(" [")
		line.WriteString(a.Value.String())
		line.WriteString("]")
		return true
	})
	line.WriteString(" ")
	line.WriteString(r.Message)
	line.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.out, line.String())
	return err
}

// CmdLogger routes info lines to stdout and errors to the JSON stderr
// handler; it satisfies the library's Logger interface.
type CmdLogger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func (l CmdLogger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l CmdLogger) Error(message string) {
	l.ErrorLog.Error(message)
}
