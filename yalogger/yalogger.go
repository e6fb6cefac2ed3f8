// Package yalogger defines the structured logger used across the module and a
// logrus-backed implementation of it.
package yalogger

import (
	"github.com/google/uuid"
)

// Level is the minimum severity a logger emits. Values match logrus levels.
type Level uint32

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// BaseLoggerType selects the backend behind NewBaseLogger.
type BaseLoggerType uint8

const (
	Logrus BaseLoggerType = iota
)

// Context keys added by the With* helpers.
const (
	KeyRequestID       = "request_id"
	KeySystemRequestID = "system_request_id"
	KeyUserID          = "user_id"
)

// Config defines the configuration options for the logger.
//
// BaseLoggerType: The type of logger to use (e.g., Logrus).
// Level: The minimum log level to output (e.g., Info).
// FullTimestamp: Whether to include the full timestamp in log messages.
// DisableTimestamp: Whether to disable timestamps in log messages.
// TimestampFormat: The format to use for timestamps in log messages.
type Config struct {
	BaseLoggerType   BaseLoggerType
	Level            Level
	FullTimestamp    bool
	DisableTimestamp bool
	TimestampFormat  string
}

// BaseLogger is a factory of Logger instances sharing one backend.
type BaseLogger interface {
	NewLogger() Logger
}

// Logger is a leveled logger with key-value context.
//
// With* methods return a derived logger and leave the receiver untouched:
//
//	log := base.NewLogger().WithField("chat_id", chatID)
//	log.Debugf("resolved %d users", n)
type Logger interface {
	Info(msg string)
	Infof(format string, args ...any)
	Trace(msg string)
	Tracef(format string, args ...any)
	Error(msg string)
	Errorf(format string, args ...any)
	Warn(msg string)
	Warnf(format string, args ...any)
	Debug(msg string)
	Debugf(format string, args ...any)
	Fatal(msg string)
	Fatalf(format string, args ...any)

	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger

	// WithRequestStringID, WithRequestUUID and WithRequestID all set KeyRequestID.
	WithRequestStringID(id string) Logger
	WithRequestUUID(id uuid.UUID) Logger
	WithRequestID(id uint64) Logger
	// WithRandomRequestID sets KeyRequestID to a fresh random UUID.
	WithRandomRequestID() Logger
	WithSystemRequestID(id uint8) Logger
	WithUserID(userID uint64) Logger

	// GetFields returns a copy of the current context.
	GetFields() map[string]any
	// GetField returns nil when key is not in the context.
	GetField(key string) any
}
