package logger

import (
	"log"
	"strings"
	"sync/atomic"
)

// Level is a log severity
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel sets the minimum level that is written. Unknown names fall back to INFO
// and report false.
func SetLevel(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		level.Store(int32(LevelDebug))
	case "INFO", "":
		level.Store(int32(LevelInfo))
	case "WARN", "WARNING":
		level.Store(int32(LevelWarn))
	case "ERROR":
		level.Store(int32(LevelError))
	default:
		level.Store(int32(LevelInfo))
		return false
	}
	return true
}

// Enabled reports whether messages at l are written
func Enabled(l Level) bool {
	return Level(level.Load()) <= l
}

// Debugf logs at DEBUG level
func Debugf(format string, v ...interface{}) {
	if Enabled(LevelDebug) {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// Infof logs at INFO level
func Infof(format string, v ...interface{}) {
	if Enabled(LevelInfo) {
		log.Printf("[INFO] "+format, v...)
	}
}

// Warnf logs at WARN level
func Warnf(format string, v ...interface{}) {
	if Enabled(LevelWarn) {
		log.Printf("[WARN] "+format, v...)
	}
}

// Errorf logs at ERROR level
func Errorf(format string, v ...interface{}) {
	if Enabled(LevelError) {
		log.Printf("[ERROR] "+format, v...)
	}
}

// Fatalf logs and exits the process
func Fatalf(format string, v ...interface{}) {
	log.Fatalf("[FATAL] "+format, v...)
}

// MaskKey hides all but the last four characters of a credential
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
