package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"archatlas/internal/domain"
)

// Re-export LogLevel for convenience
type LogLevel = domain.LogLevel

const (
	LogLevelDebug = domain.LogLevelDebug
	LogLevelInfo  = domain.LogLevelInfo
	LogLevelWarn  = domain.LogLevelWarn
	LogLevelError = domain.LogLevelError
)

// StructuredLogEntry represents a structured log entry
type StructuredLogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Pass      string         `json:"pass,omitempty"`
	Rule      string         `json:"rule,omitempty"`
	Component string         `json:"component,omitempty"`
	Error     string         `json:"error,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

type structuredLoggerState struct {
	enabled  bool
	minLevel LogLevel
}

var structuredLogger = &structuredLoggerState{
	enabled:  true,
	minLevel: LogLevelInfo,
}

// SetLogLevel sets the minimum log level
func SetLogLevel(level LogLevel) {
	structuredLogger.minLevel = level
}

func logLevelPriority(level LogLevel) int {
	switch level {
	case LogLevelDebug:
		return 0
	case LogLevelInfo:
		return 1
	case LogLevelWarn:
		return 2
	case LogLevelError:
		return 3
	default:
		return 1
	}
}

func logStructured(level LogLevel, message string, fields ...map[string]any) {
	if logLevelPriority(level) < logLevelPriority(structuredLogger.minLevel) {
		return
	}

	if !structuredLogger.enabled {
		log.Printf("[%s] %s", level, message)
		return
	}

	entry := StructuredLogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	}

	if len(fields) > 0 {
		entry.Context = make(map[string]any)
		for _, field := range fields {
			for k, v := range field {
				switch k {
				case "pass":
					entry.Pass = fmt.Sprintf("%v", v)
				case "rule":
					entry.Rule = fmt.Sprintf("%v", v)
				case "component":
					entry.Component = fmt.Sprintf("%v", v)
				case "error":
					entry.Error = fmt.Sprintf("%v", v)
				default:
					entry.Context[k] = v
				}
			}
		}
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		log.Printf("[%s] %s", level, message)
		return
	}

	log.Println(string(jsonBytes))
}

// LogDebug logs a debug message
func LogDebug(message string, fields ...map[string]any) {
	logStructured(LogLevelDebug, message, fields...)
}

// LogInfo logs an info message
func LogInfo(message string, fields ...map[string]any) {
	logStructured(LogLevelInfo, message, fields...)
}

// LogWarn logs a warning message
func LogWarn(message string, fields ...map[string]any) {
	logStructured(LogLevelWarn, message, fields...)
}

// LogError logs an error message
func LogError(message string, err error, fields ...map[string]any) {
	errorFields := []map[string]any{
		{"error": err.Error()},
	}
	errorFields = append(errorFields, fields...)
	logStructured(LogLevelError, message, errorFields...)
}

// LogPassStart logs the start of an analysis pass
func LogPassStart(pass string, fields ...map[string]any) {
	passFields := []map[string]any{
		{"pass": pass},
	}
	passFields = append(passFields, fields...)
	LogDebug(fmt.Sprintf("Starting pass: %s", pass), passFields...)
}

// LogPassEnd logs the end of an analysis pass with its duration and yield
func LogPassEnd(pass string, duration time.Duration, itemsFound int) {
	LogDebug(fmt.Sprintf("Completed pass: %s", pass), map[string]any{
		"pass":        pass,
		"duration_ms": duration.Milliseconds(),
		"items_found": itemsFound,
	})
}
