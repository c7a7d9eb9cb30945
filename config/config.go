package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config defines cross-cutting concerns.
type Config struct {
	Logger      *zap.SugaredLogger
	Environment *Environment
}

// New creates a Config whose logger matches the environment mode.
func New(env *Environment) (*Config, error) {
	logger, err := NewLogger(env.Mode)
	if err != nil {
		return nil, err
	}
	return &Config{
		Logger:      logger.Sugar(),
		Environment: env,
	}, nil
}

// NewLogger builds a zap logger for the given mode.
func NewLogger(mode string) (*zap.Logger, error) {
	switch mode {
	case "dev":
		return zap.NewDevelopment()
	case "prod":
		return zap.NewProduction()
	case "quiet":
		return zap.NewNop(), nil
	default:
		return nil, errors.Errorf("Invalid 'mode' flag: %s", mode)
	}
}

// Log returns the configured logger, or a no-op logger when none is set.
func (c *Config) Log() *zap.SugaredLogger {
	if c == nil || c.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return c.Logger
}
