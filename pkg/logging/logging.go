// Package logging centralizes rote's console output, replacing the
// scattered printVerbose/printInfo/printError helpers the teacher kept in
// cmd/root.go with a single leveled, colorized logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level controls how much gets printed, mirroring the teacher's verbose/quiet flags.
type Level int

const (
	LevelQuiet Level = iota
	LevelNormal
	LevelVerbose
)

// Logger writes leveled, optionally colorized messages to a pair of streams.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	level   Level
	color   bool
	info    *color.Color
	warn    *color.Color
	errc    *color.Color
	success *color.Color
}

var std = New(os.Stdout, os.Stderr)

// Default returns the process-wide logger used by cmd/* and task output.
func Default() *Logger { return std }

func New(out, errOut io.Writer) *Logger {
	useColor := shouldUseColor(out)
	return &Logger{
		out:     out,
		errOut:  errOut,
		level:   LevelNormal,
		color:   useColor,
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
		errc:    color.New(color.FgRed, color.Bold),
		success: color.New(color.FgGreen),
	}
}

// shouldUseColor mirrors mise/mvx conventions: disabled outright by
// ROTE_NO_COLOR, otherwise only enabled when stdout is a real TTY.
func shouldUseColor(out io.Writer) bool {
	if os.Getenv("ROTE_NO_COLOR") != "" || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f, ok := out.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func (l *Logger) SetLevel(lv Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lv
}

func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l.Level() < LevelVerbose {
		return
	}
	l.write(l.out, "[verbose] "+format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.Level() < LevelNormal {
		return
	}
	l.writeColored(l.out, l.info, format, args...)
}

func (l *Logger) Successf(format string, args ...interface{}) {
	if l.Level() < LevelNormal {
		return
	}
	l.writeColored(l.out, l.success, format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.writeColored(l.errOut, l.warn, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.writeColored(l.errOut, l.errc, format, args...)
}

func (l *Logger) write(w io.Writer, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

func (l *Logger) writeColored(w io.Writer, c *color.Color, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if l.color {
		c.Fprint(w, msg)
		return
	}
	fmt.Fprint(w, msg)
}

// IsVerbose checks the legacy single env var the teacher used, kept for
// code paths (shims, hook-env) that must stay allocation-free and cannot
// carry a *Logger through.
func IsVerbose() bool {
	return os.Getenv("ROTE_VERBOSE") == "true" || os.Getenv("ROTE_VERBOSE") == "1"
}
