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

package logger

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options mirrors the small subset of runtime-tunable logger behavior that
// the rest of this module (and the hclog bridge) inspects.
type Options struct {
	EnableTrace bool
}

// Logger is the structured logging surface used across the tunnel server.
type Logger interface {
	Debug(message string, err error, args ...interface{})
	Info(message string, err error, args ...interface{})
	Warning(message string, err error, args ...interface{})
	Error(message string, err error, args ...interface{})
	Fatal(message string, err error, args ...interface{})

	SetLevel(lvl Level)
	GetLevel() Level

	SetFields(f Fields)
	GetFields() Fields

	SetOptions(o *Options)
	GetOptions() *Options

	SetOutput(w io.Writer)

	// GetStdLogger returns a standard library *log.Logger that forwards to
	// this logger at the given level, for wiring into http.Server.ErrorLog.
	GetStdLogger(lvl Level, flags int) *log.Logger
}

type lgr struct {
	mu  sync.RWMutex
	lg  *logrus.Logger
	lvl Level
	fld Fields
	opt *Options
}

func New() Logger {
	return newLgr()
}

func newLgr() *lgr {
	l := &lgr{
		lg:  logrus.New(),
		lvl: InfoLevel,
		fld: NewFields(),
		opt: &Options{},
	}
	l.lg.SetLevel(InfoLevel.logrus())
	return l
}

func (l *lgr) entry() *logrus.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lg.WithFields(logrus.Fields(l.fld))
}

func (l *lgr) log(lvl Level, message string, err error, args ...interface{}) {
	if lvl == NilLevel || lvl > l.GetLevel() {
		return
	}
	e := l.entry()
	if err != nil {
		e = e.WithError(err)
	}
	if len(args) > 0 {
		e.Logf(lvl.logrus(), message, args...)
		return
	}
	e.Log(lvl.logrus(), message)
}

func (l *lgr) Debug(message string, err error, args ...interface{}) {
	l.log(DebugLevel, message, err, args...)
}

func (l *lgr) Info(message string, err error, args ...interface{}) {
	l.log(InfoLevel, message, err, args...)
}

func (l *lgr) Warning(message string, err error, args ...interface{}) {
	l.log(WarnLevel, message, err, args...)
}

func (l *lgr) Error(message string, err error, args ...interface{}) {
	l.log(ErrorLevel, message, err, args...)
}

func (l *lgr) Fatal(message string, err error, args ...interface{}) {
	l.log(FatalLevel, message, err, args...)
}

func (l *lgr) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lvl = lvl
	if lvl != NilLevel {
		l.lg.SetLevel(lvl.logrus())
	}
}

func (l *lgr) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lvl
}

func (l *lgr) SetFields(f Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fld = f
}

func (l *lgr) GetFields() Fields {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fld
}

func (l *lgr) SetOptions(o *Options) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if o == nil {
		o = &Options{}
	}
	l.opt = o
}

func (l *lgr) GetOptions() *Options {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opt
}

func (l *lgr) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lg.SetOutput(w)
}

func (l *lgr) GetStdLogger(lvl Level, flags int) *log.Logger {
	w := l.lg.WriterLevel(lvl.logrus())
	return log.New(w, "", flags)
}

var std = newLgr()

// Default returns the package-level default Logger instance.
func Default() Logger { return std }

// GetLogger returns a standard library *log.Logger bound to the default
// logger at the given level, formatting its name from pattern/args — used
// to populate http.Server.ErrorLog the way the rest of this module's HTTP
// servers do.
func GetLogger(lvl Level, flags int, pattern string, args ...interface{}) *log.Logger {
	name := pattern
	if len(args) > 0 {
		name = fmt.Sprintf(pattern, args...)
	}
	l := std.GetStdLogger(lvl, flags)
	l.SetPrefix(name + " ")
	return l
}
