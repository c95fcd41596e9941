// Package pgxlog bridges pgx query tracing into zap loggers carried by the
// request context.
package pgxlog

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ tracelog.Logger = (*Logger)(nil)

// Logger implements tracelog.Logger. Messages go to zctx.From(ctx), so query
// logs inherit whatever fields the surrounding operation attached; contexts
// without a logger stay silent.
type Logger struct{}

// NewLogger returns a Logger ready to be wired into a tracelog.TraceLog.
func NewLogger() *Logger {
	return &Logger{}
}

// Log translates one pgx trace event into a zap entry. Contexts without a
// logger carry a nop, so the entry is dropped before any field allocation
// matters.
func (l *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	lg := zctx.From(ctx)

	if ce := lg.Check(zapLevel(level), msg); ce != nil {
		fields := make([]zap.Field, 0, len(data))
		for k, v := range data {
			fields = append(fields, zap.Any(k, v))
		}
		ce.Write(fields...)
	}
}

func zapLevel(level tracelog.LogLevel) zapcore.Level {
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		return zapcore.DebugLevel
	case tracelog.LogLevelInfo:
		return zapcore.InfoLevel
	case tracelog.LogLevelWarn:
		return zapcore.WarnLevel
	case tracelog.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}
