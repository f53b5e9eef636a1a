package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	debugOn atomic.Bool
}

// NewLogger creates a new Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return newLogger(os.Stdout, os.Stderr)
}

// NewDiscardLogger returns a Logger that drops everything. Used by tests.
func NewDiscardLogger() *Logger {
	return newLogger(io.Discard, io.Discard)
}

func newLogger(out, errOut io.Writer) *Logger {
	flags := 0
	return &Logger{
		info:  log.New(out, "", flags),
		warn:  log.New(out, "", flags),
		err:   log.New(errOut, "", flags),
		debug: log.New(out, "", flags),
	}
}

// SetDebug toggles Debug output. Debug lines are suppressed by default.
func (l *Logger) SetDebug(on bool) {
	l.debugOn.Store(on)
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(fmt.Sprintf("[%s] \033[32mINFO\033[0m  %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(fmt.Sprintf("[%s] \033[33mWARN\033[0m  %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(fmt.Sprintf("[%s] \033[31mERROR\033[0m %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debugOn.Load() {
		return
	}
	l.debug.Printf(fmt.Sprintf("[%s] \033[36mDEBUG\033[0m %s\n", l.timestamp(), format), args...)
}
