package engine

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the engine logger. It is a no-op until SetLogger is called.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger configures the engine logger. Nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
