// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
)

// levelHandler filters records below a level that can be changed at runtime.
type levelHandler struct {
	lvl  *slog.LevelVar
	next slog.Handler
}

// LevelHandler wraps h so that only records at or above lvl are handled.
func LevelHandler(lvl *slog.LevelVar, h slog.Handler) slog.Handler {
	return &levelHandler{lvl, h}
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.lvl.Level() && h.next.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{h.lvl, h.next.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{h.lvl, h.next.WithGroup(name)}
}

// ParseLevel maps a level name as used by the admin API to a slog level.
func ParseLevel(name string) (slog.Level, bool) {
	switch name {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "crit":
		return LevelCrit, true
	}
	return 0, false
}

// LevelName is the inverse of ParseLevel, in upper case.
func LevelName(lvl slog.Level) string {
	switch lvl {
	case LevelTrace:
		return "TRACE"
	case LevelCrit:
		return "CRIT"
	}
	return lvl.String()
}
