package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger defines a simple interface for logging.
// The generation engine and the injector only ever log through it.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
}

// LogLevel defines the verbosity of the logger.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	dimColor    = color.New(color.Faint)
	debugColor  = color.New(color.FgBlue)
	infoColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	fatalColor  = color.New(color.FgRed, color.Bold)
	callbacksMu sync.Mutex
	beforeLog   func()
	afterLog    func()
)

// RegisterLogCallbacks installs hooks run around every log line. An active
// progress bar uses them to clear its line and redraw after the message.
func RegisterLogCallbacks(before, after func()) {
	callbacksMu.Lock()
	defer callbacksMu.Unlock()
	beforeLog = before
	afterLog = after
}

// UnregisterLogCallbacks removes the hooks installed by RegisterLogCallbacks.
func UnregisterLogCallbacks() {
	RegisterLogCallbacks(nil, nil)
}

// defaultLogger is the levelled, coloured implementation of Logger.
type defaultLogger struct {
	out      *log.Logger
	errOut   *log.Logger
	logLevel LogLevel
	noColor  bool
	silent   bool
	exit     func(int)
}

// NewDefaultLogger creates a logger writing debug/info/warn to stdout and
// error/fatal to stderr. silent discards everything below error.
func NewDefaultLogger(level LogLevel, noColor bool, silent bool) Logger {
	var out io.Writer = os.Stdout
	if silent {
		out = io.Discard
	}
	return newLogger(out, os.Stderr, level, noColor, silent)
}

// NewWriterLogger sends every level to w without colour. Fatalf does not exit.
func NewWriterLogger(w io.Writer, level LogLevel) Logger {
	l := newLogger(w, w, level, true, false)
	l.exit = func(int) {}
	return l
}

// NewNopLogger returns a Logger that drops everything.
func NewNopLogger() Logger {
	return NewWriterLogger(io.Discard, LevelFatal+1)
}

func newLogger(out, errOut io.Writer, level LogLevel, noColor bool, silent bool) *defaultLogger {
	return &defaultLogger{
		out:      log.New(out, "", 0),
		errOut:   log.New(errOut, "", 0),
		logLevel: level,
		noColor:  noColor,
		silent:   silent,
		exit:     os.Exit,
	}
}

func (l *defaultLogger) colorize(s string, c *color.Color) string {
	if l.noColor {
		return s
	}
	return c.Sprint(s)
}

func (l *defaultLogger) logInternal(logger *log.Logger, levelStr string, levelColor *color.Color, format string, v ...interface{}) {
	prefix := fmt.Sprintf("%s [%s] ",
		l.colorize("["+time.Now().Format("15:04:05")+"]", dimColor),
		l.colorize(levelStr, levelColor),
	)

	callbacksMu.Lock()
	before, after := beforeLog, afterLog
	callbacksMu.Unlock()

	if before != nil {
		before()
	}
	logger.Print(prefix + fmt.Sprintf(format, v...))
	if after != nil {
		after()
	}
}

func (l *defaultLogger) Debugf(format string, v ...interface{}) {
	if l.logLevel <= LevelDebug {
		l.logInternal(l.out, "DEBUG", debugColor, format, v...)
	}
}

func (l *defaultLogger) Infof(format string, v ...interface{}) {
	if l.logLevel <= LevelInfo {
		l.logInternal(l.out, "INFO", infoColor, format, v...)
	}
}

func (l *defaultLogger) Warnf(format string, v ...interface{}) {
	if l.logLevel <= LevelWarn {
		l.logInternal(l.out, "WARN", warnColor, format, v...)
	}
}

func (l *defaultLogger) Errorf(format string, v ...interface{}) {
	if l.logLevel <= LevelError {
		l.logInternal(l.errOut, "ERROR", errorColor, format, v...)
	}
}

func (l *defaultLogger) Fatalf(format string, v ...interface{}) {
	if l.logLevel <= LevelFatal {
		l.logInternal(l.errOut, "FATAL", fatalColor, format, v...)
	}
	l.exit(1)
}

// StringToLogLevel converts a log level string to LogLevel type.
// Defaults to LevelInfo if the string is unrecognized.
func StringToLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "info", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		fmt.Fprintf(os.Stderr, "Unknown log level string '%s', defaulting to INFO.\n", levelStr)
		return LevelInfo
	}
}
