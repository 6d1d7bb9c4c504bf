package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders message severities; messages below the configured
// level are dropped.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var level = sync.OnceValue(func() LogLevel {
	// DEBUG=1 wins over LOG_LEVEL
	switch strings.ToLower(os.Getenv("DEBUG")) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
})

// GetLevel reports the level resolved from DEBUG and LOG_LEVEL. The
// environment is read once, on first use.
func GetLevel() LogLevel {
	return level()
}

// IsDebugEnabled lets callers skip building expensive debug output.
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func emit(at LogLevel, tag, format string, args []interface{}) {
	if GetLevel() <= at {
		log.Printf(tag+format, args...)
	}
}

func Debug(format string, args ...interface{}) {
	emit(LevelDebug, "[DEBUG] ", format, args)
}

func Info(format string, args ...interface{}) {
	emit(LevelInfo, "[INFO] ", format, args)
}

func Warn(format string, args ...interface{}) {
	emit(LevelWarn, "[WARN] ", format, args)
}

func Error(format string, args ...interface{}) {
	emit(LevelError, "[ERROR] ", format, args)
}

// Fatal logs and exits regardless of level.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
