// Package logx is a thin wrapper around log.Logger adding a component
// prefix and a level string, nothing more: the teacher's own code reaches
// for plain log.Println/log.Fatal rather than a structured logging
// library, so this module does the same, just with enough shape to tag
// which component (transport, coordinator, worker) a line came from.
package logx

import (
	"fmt"
	"log"
	"os"
)

// Logger prefixes every line with a component name.
type Logger struct {
	component string
	out       *log.Logger
}

// New creates a Logger tagging every line with component.
func New(component string) *Logger {
	return &Logger{component: component, out: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *Logger) line(level, format string, args ...interface{}) string {
	return fmt.Sprintf("[%s] %s: %s", level, l.component, fmt.Sprintf(format, args...))
}

// Infof logs an informational line.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.out.Print(l.line("INFO", format, args...))
}

// Warnf logs a warning line.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.out.Print(l.line("WARN", format, args...))
}

// Errorf logs an error line.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.out.Print(l.line("ERROR", format, args...))
}

// Fatalf logs an error line and terminates the process, mirroring the
// teacher's direct log.Fatal calls for unrecoverable startup errors.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.out.Fatal(l.line("FATAL", format, args...))
}
