package webrtc

import (
	"sync"

	"github.com/pion/logging"
)

var (
	loggerMu      sync.RWMutex
	loggerFactory logging.LoggerFactory = logging.NewDefaultLoggerFactory()
	pkgLogger     logging.LeveledLogger
)

// SetLoggerFactory replaces the logger factory used by the package.
// Call before creating peer connections.
func SetLoggerFactory(factory logging.LoggerFactory) {
	loggerMu.Lock()
	loggerFactory = factory
	pkgLogger = nil
	loggerMu.Unlock()
}

func log() logging.LeveledLogger {
	loggerMu.RLock()
	l := pkgLogger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if pkgLogger == nil {
		pkgLogger = loggerFactory.NewLogger("rtc")
	}
	return pkgLogger
}
