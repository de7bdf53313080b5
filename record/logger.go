package record

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the record package's logger. It uses a no-op logger by
// default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger configures the record package's logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
