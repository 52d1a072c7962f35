// SPDX-License-Identifier: MIT
/*
Package log is the process-wide levelled logger.

Messages below the current level are dropped before formatting. The level is
held atomically so the audio callback can call Debugf without taking a lock.
Output goes to stderr until SetOutput redirects it, which the terminal UI
does while it owns the screen.
*/
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// Level is the severity of a message.
type Level uint32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a name (case-insensitive) to a Level. Unknown names
// yield LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO", "":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

var (
	currentLevel atomic.Uint32
	logger       atomic.Pointer[stdlog.Logger]
)

const flags = stdlog.Ldate | stdlog.Ltime | stdlog.Lmicroseconds

func init() {
	SetLevel(LevelInfo)
	SetOutput(os.Stderr)
}

func SetLevel(level Level) { currentLevel.Store(uint32(level)) }

func GetLevel() Level { return Level(currentLevel.Load()) }

// SetOutput redirects every subsequent message to w.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	logger.Store(stdlog.New(w, "", flags))
}

// Configure applies a level name from configuration. debug forces
// LevelDebug regardless of the name.
func Configure(levelName string, debug bool) error {
	if debug {
		SetLevel(LevelDebug)
		return nil
	}
	level, ok := ParseLevel(levelName)
	SetLevel(level)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelName)
	}
	return nil
}

func enabled(level Level) bool { return level >= GetLevel() }

func output(level Level, msg string) {
	// Pad the shorter names so messages line up.
	pad := ""
	if len(level.String()) == 4 {
		pad = " "
	}
	logger.Load().Printf("[%s]%s %s", level, pad, msg)
}

func Debugf(format string, v ...any) {
	if enabled(LevelDebug) {
		output(LevelDebug, fmt.Sprintf(format, v...))
	}
}

func Infof(format string, v ...any) {
	if enabled(LevelInfo) {
		output(LevelInfo, fmt.Sprintf(format, v...))
	}
}

func Warnf(format string, v ...any) {
	if enabled(LevelWarn) {
		output(LevelWarn, fmt.Sprintf(format, v...))
	}
}

func Errorf(format string, v ...any) {
	if enabled(LevelError) {
		output(LevelError, fmt.Sprintf(format, v...))
	}
}

// Fatalf always logs, then exits with status 1.
func Fatalf(format string, v ...any) {
	output(LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

func Info(v ...any) {
	if enabled(LevelInfo) {
		output(LevelInfo, fmt.Sprint(v...))
	}
}

func Error(v ...any) {
	if enabled(LevelError) {
		output(LevelError, fmt.Sprint(v...))
	}
}

// Fatal always logs, then exits with status 1.
func Fatal(v ...any) {
	output(LevelFatal, fmt.Sprint(v...))
	os.Exit(1)
}
