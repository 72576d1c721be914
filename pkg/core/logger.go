package core

import "fmt"

// Logger is the diagnostic channel threaded through render components
// instead of a global logger, matching the teacher's pattern of an
// always-optional `Printf`-shaped sink.
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything; used as the default when no Logger is
// supplied.
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}

// DefaultLogger writes to stdout, grounded on the teacher's
// pkg/renderer.DefaultLogger.
type DefaultLogger struct{}

func (DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger returns a stdout Logger.
func NewDefaultLogger() Logger { return DefaultLogger{} }
