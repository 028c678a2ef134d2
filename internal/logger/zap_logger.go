// Package logger adapts go.uber.org/zap to the contracts.Logger shape
// every component of the bridge logs through.
package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// zapLogger wraps a *zap.Logger behind contracts.Logger.
type zapLogger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger builds a production-style zap logger (JSON encoding,
// ISO8601 timestamps) at InfoLevel. Use SetLevel to raise verbosity.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(zapcore.AddSync(os.Stdout)), level)
	base := zap.New(core)

	return &zapLogger{base: base, level: level}
}

func newFromCore(base *zap.Logger, level zap.AtomicLevel) contracts.Logger {
	return &zapLogger{base: base, level: level}
}

func (l *zapLogger) Info(msg string, fields ...contracts.Field) {
	l.base.Info(msg, toZapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...contracts.Field) {
	l.base.Error(msg, toZapFields(fields)...)
}

func (l *zapLogger) Debug(msg string, fields ...contracts.Field) {
	l.base.Debug(msg, toZapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...contracts.Field) {
	l.base.Warn(msg, toZapFields(fields)...)
}

func (l *zapLogger) Field() contracts.Field {
	return &fieldBuilder{}
}

func (l *zapLogger) SetLevel(level contracts.LogLevel) {
	l.level.SetLevel(toZapLevel(level))
}

func (l *zapLogger) With(fields ...contracts.Field) contracts.Logger {
	return newFromCore(l.base.With(toZapFields(fields)...), l.level)
}

func (l *zapLogger) Sync() error {
	return l.base.Sync()
}

func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// fieldBuilder collects typed fields into zap.Field values. Each call
// returns a fresh contracts.Field so chained builder calls don't share
// state, matching how zapFields are consumed as a flat slice.
type fieldBuilder struct {
	fields []zap.Field
}

func (f *fieldBuilder) Bool(key string, val bool) contracts.Field {
	return &fieldBuilder{fields: append(f.fields, zap.Bool(key, val))}
}

func (f *fieldBuilder) Int(key string, val int) contracts.Field {
	return &fieldBuilder{fields: append(f.fields, zap.Int(key, val))}
}

func (f *fieldBuilder) String(key string, val string) contracts.Field {
	return &fieldBuilder{fields: append(f.fields, zap.String(key, val))}
}

func (f *fieldBuilder) Error(key string, val error) contracts.Field {
	return &fieldBuilder{fields: append(f.fields, zap.NamedError(key, val))}
}

func (f *fieldBuilder) Duration(key string, val time.Duration) contracts.Field {
	return &fieldBuilder{fields: append(f.fields, zap.Duration(key, val))}
}

func (f *fieldBuilder) Any(key string, val interface{}) contracts.Field {
	return &fieldBuilder{fields: append(f.fields, zap.Any(key, val))}
}

func toZapFields(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		fb, ok := f.(*fieldBuilder)
		if !ok || fb == nil {
			continue
		}
		out = append(out, fb.fields...)
	}
	return out
}
