package playground

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the package logger used by pipelines built without
// WithLogger.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
