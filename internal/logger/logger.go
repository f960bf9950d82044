// Package logger provides structured logging for the packing pipeline using zap.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance. It is a no-op until Init is called.
var Log = zap.NewNop()

// Options configures logger initialization.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// File enables rotating file output when non-empty.
	File string
	// Quiet disables console output (file output, if any, is kept).
	Quiet bool
}

// Init initializes the global logger.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)

	encCfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}

	var cores []zapcore.Core
	if !opts.Quiet {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stderr),
			lvl,
		))
	}
	if opts.File != "" {
		writer := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}
		fileCfg := encCfg
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(fileCfg),
			zapcore.AddSync(writer),
			lvl,
		))
	}

	Log = zap.New(zapcore.NewTee(cores...))
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
