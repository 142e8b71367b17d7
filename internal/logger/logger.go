package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents the logging verbosity threshold
type Level int

const (
	DEBUG Level = iota
	INFO
	WARNING
	ERROR
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string level, defaulting to INFO
func ParseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger is a leveled logger writing to a single output
type Logger struct {
	level Level
	out   *log.Logger
}

var (
	global *Logger
	mu     sync.Mutex
)

// Init initializes the global logger
func Init(level Level, output io.Writer) {
	if output == nil {
		output = os.Stdout
	}
	mu.Lock()
	defer mu.Unlock()
	global = &Logger{
		level: level,
		out:   log.New(output, "", log.LstdFlags),
	}
}

func get() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = &Logger{level: INFO, out: log.New(os.Stdout, "", log.LstdFlags)}
	}
	return global
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	if l.level <= level {
		l.out.Printf(fmt.Sprintf("[%s] %s", level, format), v...)
	}
}

func Debug(format string, v ...interface{}) {
	get().logf(DEBUG, format, v...)
}

func Info(format string, v ...interface{}) {
	get().logf(INFO, format, v...)
}

func Warning(format string, v ...interface{}) {
	get().logf(WARNING, format, v...)
}

func Error(format string, v ...interface{}) {
	get().logf(ERROR, format, v...)
}

// Fatal logs an error message and exits
func Fatal(format string, v ...interface{}) {
	get().logf(ERROR, format, v...)
	os.Exit(1)
}
