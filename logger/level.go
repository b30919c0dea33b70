/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package logger provides level-keyed structured logging for the tunnel
// server, backed by logrus and bridgeable into hashicorp/go-hclog for
// dependencies that expect that interface.
package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a small uint8 enum with methods to log directly against the
// package-level default logger.
type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	// NilLevel disables logging entirely; it is never a valid SetLevel target.
	NilLevel
)

func (l Level) String() string {
	switch l {
	case PanicLevel:
		return "panic"
	case FatalLevel:
		return "fatal"
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warning"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	case NilLevel:
		return "nil"
	default:
		return "info"
	}
}

func (l Level) logrus() logrus.Level {
	switch l {
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// ParseLevel returns a valid Level matching the given string, defaulting to
// InfoLevel when the string does not match a known level name.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "panic":
		return PanicLevel
	case "fatal":
		return FatalLevel
	case "error":
		return ErrorLevel
	case "warn", "warning":
		return WarnLevel
	case "info":
		return InfoLevel
	case "debug":
		return DebugLevel
	case "nil", "none", "off":
		return NilLevel
	}
	return InfoLevel
}

// Log emits a message at this level against the default logger.
func (l Level) Log(args ...interface{}) {
	if l == NilLevel {
		return
	}
	std.entry().Log(l.logrus(), args...)
}

// Logf emits a formatted message at this level against the default logger.
func (l Level) Logf(pattern string, args ...interface{}) {
	if l == NilLevel {
		return
	}
	std.entry().Logf(l.logrus(), pattern, args...)
}

// LogErrorCtxf emits a formatted message at l carrying err as a field; when
// err is nil it logs at ctxLevel instead.
func (l Level) LogErrorCtxf(ctxLevel Level, pattern string, err error, args ...interface{}) {
	lvl := l
	if err == nil {
		lvl = ctxLevel
	}
	if lvl == NilLevel {
		return
	}
	e := std.entry()
	if err != nil {
		e = e.WithError(err)
	}
	e.Logf(lvl.logrus(), pattern, args...)
}
