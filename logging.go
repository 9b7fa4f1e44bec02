package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLevel LogLevel
	levelOnce    sync.Once
)

// parseLogLevel maps a level name to a LogLevel, defaulting to info
func parseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// initLevel reads DEBUG and SLIDESHOW_LOG_LEVEL once
func initLevel() {
	levelOnce.Do(func() {
		switch strings.ToLower(os.Getenv("DEBUG")) {
		case "1", "true", "yes", "on":
			currentLevel = LevelDebug
			return
		}
		currentLevel = parseLogLevel(os.Getenv("SLIDESHOW_LOG_LEVEL"))
	})
}

func logLevel() LogLevel {
	initLevel()
	return currentLevel
}

// setLogLevel overrides the environment-derived level
func setLogLevel(level LogLevel) {
	initLevel()
	currentLevel = level
	debugLog("Log level set to %s", level)
}

func debugLog(format string, args ...interface{}) {
	if logLevel() <= LevelDebug {
		log.Printf("Debug: "+format, args...)
	}
}

func infoLog(format string, args ...interface{}) {
	if logLevel() <= LevelInfo {
		log.Printf(format, args...)
	}
}

func warnLog(format string, args ...interface{}) {
	if logLevel() <= LevelWarn {
		log.Printf("Warning: "+format, args...)
	}
}

func errorLog(format string, args ...interface{}) {
	if logLevel() <= LevelError {
		log.Printf("Error: "+format, args...)
	}
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
