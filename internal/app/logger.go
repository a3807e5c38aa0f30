package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/config"
)

// NewLogger builds the application logger: a development logger when
// cfg.Development is set, a production JSON logger otherwise.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zc.Level = level
	}
	return zc.Build()
}
