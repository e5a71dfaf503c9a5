package engine

import (
	"fmt"
	"io"
	"os"
)

// Logger receives a message plus variadic tag pairs. Config carries one
// (no-op by default); the interpreter itself does not write to it.
type Logger interface {
	Debug(msg string, tags ...interface{})
	Info(msg string, tags ...interface{})
	Warn(msg string, tags ...interface{})
	Error(msg string, tags ...interface{})
}

type writerLogger struct{ out io.Writer }

// NewLogger creates a Logger that writes to stdout.
func NewLogger() Logger { return &writerLogger{os.Stdout} }

// NewLoggerTo creates a Logger that writes to an arbitrary writer, for
// tests that want to capture output instead of printing it.
func NewLoggerTo(w io.Writer) Logger { return &writerLogger{w} }

func (l *writerLogger) print(msg string, tags ...interface{}) {
	fmt.Fprintln(l.out, append([]interface{}{msg}, tags...))
}

func (l *writerLogger) Debug(msg string, tags ...interface{}) { l.print(msg, tags...) }
func (l *writerLogger) Info(msg string, tags ...interface{})  { l.print(msg, tags...) }
func (l *writerLogger) Warn(msg string, tags ...interface{})  { l.print(msg, tags...) }
func (l *writerLogger) Error(msg string, tags ...interface{}) { l.print(msg, tags...) }

// noopLogger discards everything; used as the Interpreter default so
// callers that don't care about diagnostics don't have to provide one.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
