// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelCrit  = slog.Level(12)
)

// Logger writes key/value pairs to a Handler.
type Logger interface {
	// With returns a new Logger that has this logger's attributes plus ctx.
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)

	// Crit logs at the crit level and exits the process.
	Crit(msg string, ctx ...any)
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) write(level slog.Level, msg string, ctx []any) {
	l.inner.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }

func (l *logger) Crit(msg string, ctx ...any) {
	l.write(LevelCrit, msg, ctx)
	os.Exit(1)
}

var root atomic.Pointer[slog.Handler]

func init() {
	h := DiscardHandler()
	root.Store(&h)
}

type rootHandler struct{}

func (rootHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return (*root.Load()).Enabled(ctx, lvl)
}

func (rootHandler) Handle(ctx context.Context, r slog.Record) error {
	return (*root.Load()).Handle(ctx, r)
}

func (h rootHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return withAttrsHandler{h, attrs}
}

func (h rootHandler) WithGroup(_ string) slog.Handler { return h }

type withAttrsHandler struct {
	parent slog.Handler
	attrs  []slog.Attr
}

func (h withAttrsHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.parent.Enabled(ctx, lvl)
}

func (h withAttrsHandler) Handle(ctx context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)
	return h.parent.Handle(ctx, r)
}

func (h withAttrsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return withAttrsHandler{h, attrs}
}

func (h withAttrsHandler) WithGroup(_ string) slog.Handler { return h }

// SetRootHandler installs h as the process-wide log sink.
func SetRootHandler(h slog.Handler) {
	root.Store(&h)
}

// New returns a logger carrying the given context attributes.
func New(ctx ...any) Logger {
	return (&logger{slog.New(rootHandler{})}).With(ctx...)
}

// WithContext returns a package-scoped logger.
// Conventionally called as WithContext("pkg", "<name>") at package level.
func WithContext(ctx ...any) Logger {
	return New(ctx...)
}

// Root returns the root logger with no pre-set attributes.
func Root() Logger {
	return &logger{slog.New(rootHandler{})}
}
