package utils

import (
	"log"
	"sync"

	"concierge/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// GetLogger returns the process-wide logger, building it on first use.
// Production gets JSON at info; anything else gets colored console
// output at debug. The result is also installed as zap's global so
// zap.L() callers share it.
func GetLogger() *zap.Logger {
	loggerOnce.Do(func() {
		var cfg zap.Config
		if config.IsProduction() {
			cfg = zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		var err error
		logger, err = cfg.Build()
		if err != nil {
			log.Fatalf("failed to build logger: %v", err)
		}
		zap.ReplaceGlobals(logger)
	})
	return logger
}
