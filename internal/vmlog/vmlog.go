// Package vmlog wraps log/slog with a handler that formats records the way
// the rest of this codebase's tooling expects: a plain timestamped line to
// a sink, mirrored to stderr whenever debug output is requested.
package vmlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// handler implements slog.Handler over a single text sink, optionally
// echoing every record to stderr when debug is enabled.
type handler struct {
	out   io.Writer
	h     slog.Handler
	mu    *sync.Mutex
	debug bool
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{out: h.out, h: h.h.WithAttrs(attrs), mu: h.mu, debug: h.debug}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{out: h.out, h: h.h.WithGroup(name), mu: h.mu, debug: h.debug}
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})
	line := []byte(strings.Join(parts, " ") + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(line)
	}
	if h.debug && h.out != os.Stderr {
		_, _ = os.Stderr.Write(line)
	}
	return err
}

// New builds a *slog.Logger writing to out. Debug-level records are only
// enabled, and mirrored to stderr, when the CRVM_DEBUG environment
// variable is set — matching the env-gated verbosity switch the rest of
// this tree's tooling uses.
func New(out io.Writer) *slog.Logger {
	debug := os.Getenv("CRVM_DEBUG") != ""
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := &handler{
		out:   out,
		h:     slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
		mu:    &sync.Mutex{},
		debug: debug,
	}
	return slog.New(h)
}

// Discard is a logger that drops everything, used when a caller (e.g. a
// library function, or tests) doesn't want log output wired up at all.
var Discard = slog.New(slog.NewTextHandler(io.Discard, nil))
