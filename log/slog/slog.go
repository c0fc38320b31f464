//go:build go1.21

// Package slog adapts a standard library slog.Logger to the oslocache
// Logger interface.
package slog

import (
	"context"
	stdslog "log/slog"

	oslocache "github.com/SovereignCloudStack/oslo.cache"
)

type Logger struct{ L *stdslog.Logger }

var _ oslocache.Logger = Logger{}

func (s Logger) Debug(msg string, f oslocache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelDebug, msg, attrs(f)...)
}

func (s Logger) Info(msg string, f oslocache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelInfo, msg, attrs(f)...)
}

func (s Logger) Warn(msg string, f oslocache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelWarn, msg, attrs(f)...)
}

func (s Logger) Error(msg string, f oslocache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelError, msg, attrs(f)...)
}

func attrs(f oslocache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, stdslog.Any(k, v))
	}
	return out
}
