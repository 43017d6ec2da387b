package app

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/five82/hudsync/internal/config"
)

// newLogger builds the process logger. Output goes to cfg.LogPath because the
// TUI owns the terminal; headless runs also echo to stderr. The console
// encoder separates columns with tabs so the log pane can color them.
func newLogger(cfg config.Config, echo bool) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level := logLevel(cfg.LogLevel)
	encoder := newEncoder(cfg.LogFormat)
	core := zapcore.NewCore(encoder, zapcore.AddSync(file), level)
	if echo {
		core = zapcore.NewTee(core, zapcore.NewCore(encoder.Clone(), zapcore.Lock(os.Stderr), level))
	}

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	cleanup := func() {
		_ = logger.Sync()
		_ = file.Close()
	}
	return logger, cleanup, nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "json" {
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	// The log pane expects ts, LEVEL, logger, msg and fields only.
	encoderConfig.CallerKey = zapcore.OmitKey
	encoderConfig.ConsoleSeparator = "\t"
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func logLevel(level string) zapcore.Level {
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
