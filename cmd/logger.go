package cmd

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cliEncoderConfig = zapcore.EncoderConfig{
	LevelKey:       "level",
	MessageKey:     "msg",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.LowercaseColorLevelEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
}

// newLogger builds a console logger on stderr. Verbosity n enables logr V(n).
func newLogger(verbosity int) (logr.Logger, error) {
	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.Level(int8(-verbosity))),
		Encoding:          "console",
		DisableStacktrace: true,
		DisableCaller:     true,
		EncoderConfig:     cliEncoderConfig,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	zapLog, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zapLog), nil
}
