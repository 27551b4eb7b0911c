// Package zap wires the logger package's subsystem singletons to real
// zap.Logger instances, one rotated file per subsystem, following the
// teacher's logger/zap/zap.go initialization sequence.
package zap

import (
	"path/filepath"

	"github.com/forbearing/flowquery/config"
	"github.com/forbearing/flowquery/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var created []*Logger

// Init creates the subsystem loggers from config.App.Logger and assigns
// them into the logger package's package-level variables.
func Init() error {
	zap.ReplaceGlobals(zap.New(
		zapcore.NewCore(newEncoder(), zapcore.AddSync(newWriter("runtime.log")), newLevel()),
		zap.AddCaller(),
	))

	logger.Params = New("params.log")
	logger.DAG = New("dag.log")
	logger.Cache = New("cache.log")
	logger.Handler = New("handler.log")
	logger.Engine = New("engine.log")
	return nil
}

// Clean flushes every subsystem logger's buffered writes. Sync errors on
// stderr/stdout-backed cores are expected on some platforms and ignored.
func Clean() {
	for _, l := range created {
		_ = l.zlog.Sync()
	}
	_ = zap.L().Sync()
}

func newLevel() zapcore.Level {
	lvl := zapcore.InfoLevel
	_ = lvl.UnmarshalText([]byte(config.App.Logger.Level))
	return lvl
}

func newEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if config.App.Logger.Encoder == "console" {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func newWriter(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(config.App.Logger.Dir, filename),
		MaxAge:     config.App.Logger.MaxAge,
		MaxSize:    config.App.Logger.MaxSize,
		MaxBackups: config.App.Logger.MaxBackups,
		Compress:   true,
	}
}

// New builds a subsystem Logger writing to its own rotated file.
func New(filename string) *Logger {
	core := zapcore.NewCore(newEncoder(), zapcore.AddSync(newWriter(filename)), newLevel())
	l := &Logger{zlog: zap.New(core, zap.AddCaller())}
	created = append(created, l)
	return l
}
