package atlaslog

import (
	"fmt"
	"os"

	"github.com/pomagma/atlas/atlascfg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// levelFor maps POMAGMA_LOG_LEVEL's 0..3 convention onto zapcore's levels.
func levelFor(level int) zapcore.Level {
	switch level {
	case 0:
		return zapcore.ErrorLevel
	case 1:
		return zapcore.WarnLevel
	case 2:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a *zap.Logger from cfg: POMAGMA_LOG_LEVEL selects the level,
// POMAGMA_LOG_FILE selects the output (stderr if empty).
func New(cfg atlascfg.Config) (*zap.Logger, error) {
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.TimeKey = "ts"
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	logConfig.Level = zap.NewAtomicLevelAt(levelFor(cfg.LogLevel))
	logConfig.DisableStacktrace = true

	if cfg.LogFile != "" {
		if _, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err != nil {
			return nil, fmt.Errorf("atlaslog: cannot open %s: %w", cfg.LogFile, err)
		}
		logConfig.OutputPaths = []string{cfg.LogFile}
		logConfig.ErrorOutputPaths = []string{cfg.LogFile}
	} else {
		logConfig.OutputPaths = []string{"stderr"}
		logConfig.ErrorOutputPaths = []string{"stderr"}
	}

	log, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("atlaslog: build logger: %w", err)
	}
	return log.Named("atlas"), nil
}

// Must is New, panicking on error, for callers (like main) that cannot
// usefully continue without a logger.
func Must(cfg atlascfg.Config) *zap.Logger {
	log, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return log
}
