// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors used by the configuration loader and its CLI.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, Fatal, etc.) are available directly on *Logger.
package logger

import (
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger.
// Embedding zerolog.Logger exposes the full zerolog API while allowing the
// application to add helper methods without modifying the upstream type.
type Logger struct {
	zerolog.Logger
}

// NewLogger constructs a *Logger for an executable with the given role label
// (e.g. "confcrypt").
//
// The logger is configured with:
//   - global log level set to Debug (all levels are emitted);
//   - a "role" field set to role;
//   - a "ts" timestamp field added to every log entry;
//   - a "func" caller field that records the fully-qualified function name
//     (instead of the default file:line format) for easier log navigation.
//
// Output is written to os.Stderr in JSON format so that stdout stays free
// for command output. It mutates zerolog globals and is meant for main
// packages only; libraries use [New].
func NewLogger(role string) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name() // return function name
	}

	zerolog.CallerFieldName = "func"
	logger := zerolog.New(os.Stderr).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// New constructs a *Logger writing JSON to w at Info level without touching
// zerolog globals.
func New(w io.Writer, role string) *Logger {
	logger := zerolog.New(w).Level(zerolog.InfoLevel).With().
		Str("role", role).
		Timestamp().
		Logger()

	return &Logger{logger}
}

// Wrap adapts an existing zerolog.Logger.
func Wrap(l zerolog.Logger) *Logger {
	return &Logger{l}
}

// Nop returns a *Logger that discards all log output.
// It is intended for use in tests and other contexts where logging is
// undesirable or would produce noise.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Child returns a new *Logger that inherits all fields of the receiver and
// carries one extra string field. The parent logger is not affected.
func (l *Logger) Child(key, value string) *Logger {
	return &Logger{l.With().Str(key, value).Logger()}
}
