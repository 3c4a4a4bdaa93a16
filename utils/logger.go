package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging throughout the application.
// Debug output is discarded unless enabled.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger
}

// NewLogger creates a Logger writing to stdout/stderr.
func NewLogger(debug bool) *Logger {
	var debugOut io.Writer = io.Discard
	if debug {
		debugOut = os.Stdout
	}
	return &Logger{
		info:  log.New(os.Stdout, "", 0),
		warn:  log.New(os.Stdout, "", 0),
		err:   log.New(os.Stderr, "", 0),
		debug: log.New(debugOut, "", 0),
	}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	l := log.New(io.Discard, "", 0)
	return &Logger{info: l, warn: l, err: l, debug: l}
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
	l.debug.Printf(fmt.Sprintf("[%s] \033[36mDEBUG\033[0m %s\n", l.timestamp(), format), args...)
}
