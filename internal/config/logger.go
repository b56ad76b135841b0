package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lv-papertrade/internal/types"
)

// NewLogger builds a console logger in development and JSON otherwise.
func NewLogger(mode types.AppMode, level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if mode == types.AppModeDevelopment {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
