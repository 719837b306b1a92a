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

package logger

import "github.com/sirupsen/logrus"

// Entry is a single structured log line under construction.
type Entry struct {
	log    *logrus.Logger
	fields logrus.Fields
}

// FieldAdd attaches one key/value pair to the entry and returns it for
// chaining.
func (e *Entry) FieldAdd(key string, val interface{}) *Entry {
	e.fields[key] = val
	return e
}

func (e *Entry) Debug(msg string) { e.log.WithFields(e.fields).Debug(msg) }
func (e *Entry) Info(msg string)  { e.log.WithFields(e.fields).Info(msg) }
func (e *Entry) Warn(msg string)  { e.log.WithFields(e.fields).Warn(msg) }
func (e *Entry) Error(msg string) { e.log.WithFields(e.fields).Error(msg) }
