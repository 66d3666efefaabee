package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Debug mode uses the colored development
// encoder, everything else logs JSON at the given level.
func New(level string, debug bool) *zap.SugaredLogger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err == nil {
			config.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	logger, err := config.Build()
	if err != nil {
		log.Panic(err)
	}

	return logger.Sugar()
}

// Nop returns a logger that discards everything, for tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
