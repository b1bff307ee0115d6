package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.RWMutex
	instance = zap.NewNop().Sugar()
)

// Config selects the logger flavour
type Config struct {
	Development bool
	Level       string
}

// New builds a zap logger for cfg and installs it as the package logger
func New(cfg Config) (*zap.SugaredLogger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	Set(l.Sugar())
	return L(), nil
}

// L returns the package logger. It is a no-op logger until New or Set is called.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Set replaces the package logger
func Set(l *zap.SugaredLogger) {
	mu.Lock()
	instance = l
	mu.Unlock()
}

// Sync flushes buffered log entries
func Sync() {
	_ = L().Sync()
}
