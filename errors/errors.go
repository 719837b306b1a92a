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

// Package errors provides the gateway's error type: a small code
// (mirroring HTTP status families), a message, an optional parent
// chain, and the call site that raised it. Config load, route lookup
// (route.NotFoundError) and module compilation/instantiation return
// it, so callers can ask "what kind of failure was this" without
// string matching. The session state machine does not use it: it
// records why a session ended as its own CloseReason.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Error extends the standard error interface with a code, an optional
// parent chain, and the source location where it was created.
type Error interface {
	error

	Code() CodeError
	Is(err error) bool
	Add(parent ...error) Error
	Parents() []error

	Location() (file string, line int)
}

type wrapped struct {
	code    CodeError
	message string
	parent  []error
	file    string
	line    int
}

func frame() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "", 0
	}
	return file, line
}

// New creates an Error with the given code, message, and parents.
func New(code CodeError, message string, parent ...error) Error {
	file, line := frame()
	return &wrapped{
		code:    code,
		message: message,
		parent:  parent,
		file:    file,
		line:    line,
	}
}

// Newf creates an Error with the given code and a formatted message.
func Newf(code CodeError, pattern string, args ...any) Error {
	file, line := frame()
	return &wrapped{
		code:    code,
		message: fmt.Sprintf(pattern, args...),
		file:    file,
		line:    line,
	}
}

func (e *wrapped) Error() string {
	if e.code == UnknownError {
		return e.message
	}
	return fmt.Sprintf("[%d] %s", e.code.Uint16(), e.message)
}

func (e *wrapped) Code() CodeError {
	return e.code
}

func (e *wrapped) Parents() []error {
	return e.parent
}

func (e *wrapped) Location() (string, int) {
	return e.file, e.line
}

func (e *wrapped) Add(parent ...error) Error {
	for _, p := range parent {
		if p != nil {
			e.parent = append(e.parent, p)
		}
	}
	return e
}

func (e *wrapped) Is(err error) bool {
	if err == nil {
		return false
	}
	var o *wrapped
	if errors.As(err, &o) {
		return e.code == o.code && e.message == o.message
	}
	return false
}

func (e *wrapped) Unwrap() []error {
	return e.parent
}

// Is reports whether err is (or wraps) a gateway Error.
func Is(err error) bool {
	var e Error
	return errors.As(err, &e)
}

// Get returns err as a gateway Error, or nil if it isn't one.
func Get(err error) Error {
	var e Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// HasCode reports whether err is a gateway Error carrying the given
// code.
func HasCode(err error, code CodeError) bool {
	e := Get(err)
	return e != nil && e.Code() == code
}
