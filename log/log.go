// Package log is a small leveled logger. Every line carries a timestamp and
// its level; lines from concurrent goroutines never interleave.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hhkbp2/go-strftime"
	"github.com/pkg/errors"
)

type LogLevelType uint8

const (
	LevelVerbose LogLevelType = 50
	LevelDebug   LogLevelType = 40
	LevelInfo    LogLevelType = 30
	LevelWarn    LogLevelType = 20
	LevelError   LogLevelType = 10
	LevelQuiet   LogLevelType = 0

	TimestampFormat = "%Y-%m-%d %H:%M:%S"
)

var (
	nameToLevels = map[string]LogLevelType{
		"verbose": LevelVerbose,
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"quiet":   LevelQuiet,
	}
	levelTags = map[LogLevelType]string{
		LevelVerbose: "VERBOSE",
		LevelDebug:   "DEBUG",
		LevelInfo:    "INFO",
		LevelWarn:    "WARN",
		LevelError:   "ERROR",
	}
)

var (
	lock                  = &sync.Mutex{}
	logLevel LogLevelType = LevelInfo
	output   io.Writer    = os.Stdout
)

func SetLogLevel(level LogLevelType) {
	lock.Lock()
	defer lock.Unlock()
	logLevel = level
}

// SetLogLevelByName sets the level from one of verbose, debug, info, warn,
// error and quiet.
func SetLogLevelByName(name string) error {
	level, ok := nameToLevels[strings.ToLower(name)]
	if !ok {
		return errors.Errorf("unknown log level: %s", name)
	}
	SetLogLevel(level)
	return nil
}

// SetOutput redirects the log and returns the previous destination.
func SetOutput(w io.Writer) io.Writer {
	lock.Lock()
	defer lock.Unlock()
	prev := output
	output = w
	return prev
}

func Flogf(w io.Writer, level LogLevelType, format string, args ...interface{}) {
	lock.Lock()
	defer lock.Unlock()
	if level <= logLevel {
		fmt.Fprintf(w, "%s [%s] ", strftime.Format(TimestampFormat, time.Now()), levelTags[level])
		fmt.Fprintf(w, format, args...)
		fmt.Fprintln(w, "")
	}
}

func Logf(level LogLevelType, format string, args ...interface{}) {
	lock.Lock()
	w := output
	lock.Unlock()
	Flogf(w, level, format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logf(LevelError, format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logf(LevelWarn, format, args...)
}

func Infof(format string, args ...interface{}) {
	Logf(LevelInfo, format, args...)
}

func Debugf(format string, args ...interface{}) {
	Logf(LevelDebug, format, args...)
}

func Verbosef(format string, args ...interface{}) {
	Logf(LevelVerbose, format, args...)
}
