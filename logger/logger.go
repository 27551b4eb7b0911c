// Package logger exposes the process-wide, per-subsystem logger
// singletons. Each is a no-op logger until logger/zap.Init wires it to a
// real zap-backed implementation; this lets packages log unconditionally
// without nil-checking, the same contract the teacher's logger package
// provides to logger/zap.
package logger

import "github.com/forbearing/flowquery/types"

// Subsystem loggers, populated by zap.Init(). Each writes to its own
// rotated log file.
var (
	Params  types.Logger = noop{}
	DAG     types.Logger = noop{}
	Cache   types.Logger = noop{}
	Handler types.Logger = noop{}
	Engine  types.Logger = noop{}
)

type noop struct{}

func (noop) Debug(args ...any)                  {}
func (noop) Info(args ...any)                   {}
func (noop) Warn(args ...any)                   {}
func (noop) Error(args ...any)                  {}
func (noop) Fatal(args ...any)                  {}
func (noop) Debugf(format string, args ...any)  {}
func (noop) Infof(format string, args ...any)   {}
func (noop) Warnf(format string, args ...any)   {}
func (noop) Errorf(format string, args ...any)  {}
func (noop) Fatalf(format string, args ...any)  {}
func (noop) Debugw(msg string, kv ...any)       {}
func (noop) Infow(msg string, kv ...any)        {}
func (noop) Warnw(msg string, kv ...any)        {}
func (noop) Errorw(msg string, kv ...any)       {}
func (n noop) With(fields ...string) types.Logger { return n }
