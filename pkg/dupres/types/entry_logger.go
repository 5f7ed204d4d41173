package types

import "fmt"

// EntryLogger decorates a Logger with the identity of one in-flight
// transaction, so every line the coordinator/responder/sweeper emit
// while handling it carries the same (namespace, digest, tid) instead
// of every call site splicing them into its own format string.
type EntryLogger struct {
	base Logger
	key  Key
	tid  TID
}

// ForEntry returns a logger that prefixes every line with key and tid.
func ForEntry(base Logger, key Key, tid TID) *EntryLogger {
	return &EntryLogger{base: base, key: key, tid: tid}
}

func (l *EntryLogger) prefix(message string) string {
	return fmt.Sprintf("%s tid=%d: %s", l.key, l.tid, message)
}

func (l *EntryLogger) Info(v ...interface{}) { l.base.Info(l.prefix(fmt.Sprint(v...))) }
func (l *EntryLogger) Infof(format string, v ...interface{}) {
	l.base.Info(l.prefix(fmt.Sprintf(format, v...)))
}

func (l *EntryLogger) Warn(v ...interface{}) { l.base.Warn(l.prefix(fmt.Sprint(v...))) }
func (l *EntryLogger) Warnf(format string, v ...interface{}) {
	l.base.Warn(l.prefix(fmt.Sprintf(format, v...)))
}

func (l *EntryLogger) Error(v ...interface{}) { l.base.Error(l.prefix(fmt.Sprint(v...))) }
func (l *EntryLogger) Errorf(format string, v ...interface{}) {
	l.base.Error(l.prefix(fmt.Sprintf(format, v...)))
}

func (l *EntryLogger) Debug(v ...interface{}) { l.base.Debug(l.prefix(fmt.Sprint(v...))) }
func (l *EntryLogger) Debugf(format string, v ...interface{}) {
	l.base.Debug(l.prefix(fmt.Sprintf(format, v...)))
}

func (l *EntryLogger) Fatal(v ...interface{}) { l.base.Fatal(l.prefix(fmt.Sprint(v...))) }
func (l *EntryLogger) Fatalf(format string, v ...interface{}) {
	l.base.Fatal(l.prefix(fmt.Sprintf(format, v...)))
}

func (l *EntryLogger) Panic(v ...interface{}) { l.base.Panic(l.prefix(fmt.Sprint(v...))) }
func (l *EntryLogger) Panicf(format string, v ...interface{}) {
	l.base.Panic(l.prefix(fmt.Sprintf(format, v...)))
}

func (l *EntryLogger) ToggleDebug(value bool) bool { return l.base.ToggleDebug(value) }
