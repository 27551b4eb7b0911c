package zap

import "github.com/forbearing/flowquery/types"

import "go.uber.org/zap"

// Logger implements types.Logger on top of *zap.Logger.
type Logger struct {
	zlog *zap.Logger
}

var _ types.Logger = (*Logger)(nil)

func (l *Logger) Debug(args ...any) { l.zlog.Sugar().Debug(args...) }
func (l *Logger) Info(args ...any)  { l.zlog.Sugar().Info(args...) }
func (l *Logger) Warn(args ...any)  { l.zlog.Sugar().Warn(args...) }
func (l *Logger) Error(args ...any) { l.zlog.Sugar().Error(args...) }
func (l *Logger) Fatal(args ...any) { l.zlog.Sugar().Fatal(args...) }

func (l *Logger) Debugf(format string, args ...any) { l.zlog.Sugar().Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.zlog.Sugar().Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.zlog.Sugar().Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.zlog.Sugar().Errorf(format, args...) }
func (l *Logger) Fatalf(format string, args ...any) { l.zlog.Sugar().Fatalf(format, args...) }

func (l *Logger) Debugw(msg string, kv ...any) { l.zlog.Sugar().Debugw(msg, kv...) }
func (l *Logger) Infow(msg string, kv ...any)  { l.zlog.Sugar().Infow(msg, kv...) }
func (l *Logger) Warnw(msg string, kv ...any)  { l.zlog.Sugar().Warnw(msg, kv...) }
func (l *Logger) Errorw(msg string, kv ...any) { l.zlog.Sugar().Errorw(msg, kv...) }

// With returns a derived logger carrying the given key/value string pairs
// on every subsequent call. An odd number of fields pads with an empty
// string rather than panicking.
func (l *Logger) With(fields ...string) types.Logger {
	if len(fields) == 0 {
		return l
	}
	if len(fields)%2 != 0 {
		fields = append(fields, "")
	}
	zapFields := make([]zap.Field, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		if len(fields[i]) == 0 {
			continue
		}
		zapFields = append(zapFields, zap.String(fields[i], fields[i+1]))
	}
	return &Logger{zlog: l.zlog.With(zapFields...)}
}
