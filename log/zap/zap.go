// Package zap adapts a zap.Logger to the oslocache Logger interface.
package zap

import (
	"go.uber.org/zap"

	oslocache "github.com/SovereignCloudStack/oslo.cache"
)

type Logger struct{ L *zap.Logger }

var _ oslocache.Logger = Logger{}

func (z Logger) Debug(msg string, f oslocache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f oslocache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f oslocache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f oslocache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f oslocache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
