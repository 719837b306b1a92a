/*
 * MIT License
 *
 * Copyright (c) 2026 wasmgate contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger provides the gateway's structured logger: a thin,
// instance-based wrapper around sirupsen/logrus that attaches a small
// field bag (session id, token, route, backend id) to every entry.
//
// It is deliberately smaller than a general-purpose logging library:
// the gateway has one process, one log stream, and a handful of call
// sites (gateway startup, host-call log, session close — whose entry
// records route misses, instantiation failures and fatal traps as its
// close reason) that all want the same shape of entry.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	liblvl "github.com/sabouaram/wasmgate/logger/level"
)

// Logger is the logging surface used throughout the gateway.
type Logger interface {
	// SetLevel changes the minimum level that will be emitted.
	SetLevel(lvl liblvl.Level)
	// SetOutput redirects where entries are written.
	SetOutput(w io.Writer)

	// Entry starts a new structured entry. Chain FieldAdd calls on it,
	// then terminate with Debug/Info/Warn/Error.
	Entry() *Entry
}

type logger struct {
	log *logrus.Logger
}

// New returns a Logger writing key=value text lines to stderr at Info
// level, matching the teacher library's default.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logger{log: l}
}

func (o *logger) SetLevel(lvl liblvl.Level) {
	o.log.SetLevel(lvl.Logrus())
}

func (o *logger) SetOutput(w io.Writer) {
	o.log.SetOutput(w)
}

func (o *logger) Entry() *Entry {
	return &Entry{log: o.log, fields: logrus.Fields{}}
}
