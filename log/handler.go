// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

type discardHandler struct{}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error { return nil }

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool { return false }

func (h *discardHandler) WithGroup(_ string) slog.Handler { return h }

func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

const (
	termTimeFormat = "01-02|15:04:05.000"
	termCtxMaxPad  = 40
)

// TerminalHandler prints records in a human readable format, optionally colored
// by level when the output is a terminal.
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr
}

// NewTerminalHandler creates a handler which writes to wr.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewTerminalHandlerWithLevel(wr, LevelInfo, useColor)
}

// NewTerminalHandlerWithLevel creates a handler which discards records below lvl.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Level, useColor bool) *TerminalHandler {
	levelVar := &slog.LevelVar{}
	levelVar.Set(lvl)
	return &TerminalHandler{
		wr:       wr,
		lvl:      levelVar,
		useColor: useColor,
	}
}

// SetLevel adjusts the minimum level at runtime.
func (h *TerminalHandler) SetLevel(lvl slog.Level) {
	h.lvl.Set(lvl)
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) WithGroup(_ string) slog.Handler { return h }

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:       h.wr,
		lvl:      h.lvl,
		useColor: h.useColor,
		attrs:    append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := make([]byte, 0, 128)
	lvl, color := levelString(r.Level)
	if h.useColor && color != "" {
		buf = append(buf, color...)
		buf = append(buf, lvl...)
		buf = append(buf, "\x1b[0m"...)
	} else {
		buf = append(buf, lvl...)
	}
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, termTimeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	// pad message to align context
	if n := len(r.Message); n < termCtxMaxPad {
		for i := n; i < termCtxMaxPad; i++ {
			buf = append(buf, ' ')
		}
	}
	for _, attr := range h.attrs {
		buf = appendAttr(buf, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		buf = appendAttr(buf, attr)
		return true
	})
	buf = append(buf, '\n')

	_, err := h.wr.Write(buf)
	return err
}

func levelString(lvl slog.Level) (string, string) {
	switch {
	case lvl >= LevelCrit:
		return "CRIT ", "\x1b[35m"
	case lvl >= LevelError:
		return "ERROR", "\x1b[31m"
	case lvl >= LevelWarn:
		return "WARN ", "\x1b[33m"
	case lvl >= LevelInfo:
		return "INFO ", "\x1b[32m"
	case lvl >= LevelDebug:
		return "DEBUG", "\x1b[36m"
	default:
		return "TRACE", "\x1b[34m"
	}
}

func appendAttr(buf []byte, attr slog.Attr) []byte {
	buf = append(buf, ' ')
	buf = append(buf, attr.Key...)
	buf = append(buf, '=')
	return append(buf, formatValue(attr.Value)...)
}

// formatValue formats an attr value for terminal output. Big integer types get
// decimal form instead of the default stringer output.
func formatValue(v slog.Value) string {
	if v.Kind() == slog.KindAny {
		switch n := v.Any().(type) {
		case *big.Int:
			if n == nil {
				return "<nil>"
			}
			return n.String()
		case *uint256.Int:
			if n == nil {
				return "<nil>"
			}
			return n.Dec()
		case error:
			if n == nil {
				return "<nil>"
			}
			return escapeString(n.Error())
		case fmt.Stringer:
			return escapeString(n.String())
		}
	}
	if v.Kind() == slog.KindDuration {
		return v.Duration().Round(time.Millisecond).String()
	}
	return escapeString(v.String())
}

func escapeString(s string) string {
	needsQuoting := false
	for _, r := range s {
		if r <= '"' || r > '~' {
			needsQuoting = true
			break
		}
	}
	if !needsQuoting {
		return s
	}
	return strconv.Quote(s)
}
