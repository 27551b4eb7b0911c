// Package types holds the small set of interfaces shared across packages:
// the structured logger contract and a re-export of zapcore's
// ObjectMarshaler.
package types

import "go.uber.org/zap/zapcore"

// Logger is the structured logging contract every package depends on
// instead of a concrete zap.Logger, mirroring the teacher's
// logger.types.Logger split between interface and implementation.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)

	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)

	// With returns a derived logger carrying the given key/value string
	// pairs on every subsequent call. An odd number of fields pads with
	// an empty string, matching logger/zap/logger.go's behavior.
	With(fields ...string) Logger
}

// ObjectMarshaler re-exports zapcore's interface so callers of With-style
// structured fields don't need to import zapcore directly.
type ObjectMarshaler = zapcore.ObjectMarshaler
