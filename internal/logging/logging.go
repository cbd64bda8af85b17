package logging

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// Initialize configures the diagnostics logger. Without debug mode all
// diagnostics are dropped; the CLI talks to the user through stdout only.
func Initialize(debug bool) {
	if !debug {
		logger = zap.NewNop()
		return
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}

// L returns the current diagnostics logger
func L() *zap.Logger {
	return logger
}

// Sync flushes any buffered log entries
func Sync() {
	_ = logger.Sync()
}
