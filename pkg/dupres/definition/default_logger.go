package definition

import (
	"fmt"
	"log"
	"os"
)

// level is a log line's severity, used to pick a consistent "[%s]: %s"
// tag instead of each leveled method hand-rolling its own format.
type level uint8

const (
	levelInfo level = iota
	levelWarn
	levelError
	levelDebug
	levelFatal
)

func (lv level) tag() string {
	switch lv {
	case levelInfo:
		return "INFO"
	case levelWarn:
		return "WARN"
	case levelError:
		return "ERROR"
	case levelDebug:
		return "DEBUG"
	case levelFatal:
		return "FATAL"
	default:
		return "LOG"
	}
}

func formatted(lv level, message string) string {
	return fmt.Sprintf("[%s]: %s", lv.tag(), message)
}

// calldepth skips emit() and Output() so the reported file:line is the
// caller's, not this package's.
const calldepth = 3

// NewDefaultLogger returns the logger used when the caller does not
// provide its own implementation.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		backend: log.New(os.Stderr, "dupres ", log.LstdFlags),
	}
}

// DefaultLogger is the leveled types.Logger this module falls back to
// when the caller supplies none. It knows nothing about in-flight
// entries; callers needing that context wrap one in a
// types.EntryLogger (see types.ForEntry) instead of formatting
// namespace/digest/tid into each message themselves.
type DefaultLogger struct {
	backend *log.Logger
	debug   bool
}

func (l *DefaultLogger) emit(lv level, message string) {
	_ = l.backend.Output(calldepth, formatted(lv, message))
}

func (l *DefaultLogger) Info(v ...interface{}) { l.emit(levelInfo, fmt.Sprint(v...)) }
func (l *DefaultLogger) Infof(format string, v ...interface{}) {
	l.emit(levelInfo, fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Warn(v ...interface{}) { l.emit(levelWarn, fmt.Sprint(v...)) }
func (l *DefaultLogger) Warnf(format string, v ...interface{}) {
	l.emit(levelWarn, fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Error(v ...interface{}) { l.emit(levelError, fmt.Sprint(v...)) }
func (l *DefaultLogger) Errorf(format string, v ...interface{}) {
	l.emit(levelError, fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Debug(v ...interface{}) {
	if l.debug {
		l.emit(levelDebug, fmt.Sprint(v...))
	}
}

func (l *DefaultLogger) Debugf(format string, v ...interface{}) {
	if l.debug {
		l.emit(levelDebug, fmt.Sprintf(format, v...))
	}
}

func (l *DefaultLogger) ToggleDebug(value bool) bool {
	l.debug = value
	return l.debug
}

func (l *DefaultLogger) Fatal(v ...interface{}) {
	l.emit(levelFatal, fmt.Sprint(v...))
	os.Exit(1)
}

func (l *DefaultLogger) Fatalf(format string, v ...interface{}) {
	l.emit(levelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

func (l *DefaultLogger) Panic(v ...interface{}) {
	l.backend.Panic(v...)
}

func (l *DefaultLogger) Panicf(format string, v ...interface{}) {
	l.backend.Panicf(format, v...)
}
