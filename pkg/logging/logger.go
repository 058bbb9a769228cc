// Package logging provides structured logging for the
// cross-browser suite with JSON, console, and multi-destination
// output. Grid commands (session creation, status reporting,
// termination) are logged through a dedicated channel so they
// can be audited per remote session.
package logging

// Logger defines the interface for structured suite logging.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning message.
	Warn(msg string, fields ...Field)

	// Error logs an error message.
	Error(msg string, fields ...Field)

	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// WithFields returns a Logger with additional default
	// fields attached to every subsequent log entry.
	WithFields(fields ...Field) Logger

	// LogGridCommand records a command sent to the remote
	// grid for one session.
	LogGridCommand(cmd GridCommandLog)

	// Close flushes any buffers and releases resources.
	Close() error
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// GridCommandLog captures one command exchanged with the grid.
type GridCommandLog struct {
	Timestamp    string `json:"timestamp"`
	DescriptorID string `json:"descriptor_id"`
	SessionID    string `json:"session_id,omitempty"`
	Command      string `json:"command"`
	Endpoint     string `json:"endpoint,omitempty"`
	Payload      string `json:"payload,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
	Error        string `json:"error,omitempty"`
}

// LogLevel represents logging severity levels.
type LogLevel int

const (
	// LevelDebug is the most verbose level.
	LevelDebug LogLevel = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarn indicates potential issues.
	LevelWarn
	// LevelError indicates failures.
	LevelError
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name (case-insensitive) to a
// LogLevel. Unknown names resolve to LevelInfo.
func ParseLevel(name string) LogLevel {
	switch name {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}
