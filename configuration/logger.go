package configuration

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a development-style logger at the named level. Unknown
// levels fall back to info.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	c.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := c.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
