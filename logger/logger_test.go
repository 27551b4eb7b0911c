package logger

import "testing"

func TestNoop_SatisfiesLoggerWithoutPanicking(t *testing.T) {
	var l noop
	l.Debug("x")
	l.Infof("x %d", 1)
	l.Warnw("x", "k", "v")
	l.Errorw("x")
	l.Error("x")
	derived := l.With("k", "v")
	derived.Info("still works")
}

func TestNoop_WithOddFieldsDoesNotPanic(t *testing.T) {
	var l noop
	l.With("k").Info("ok")
}
