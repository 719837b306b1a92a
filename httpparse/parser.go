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

// Package httpparse implements the minimal inbound HTTP/1.x parser the
// session state machine needs: method + path out of a request line and
// headers, no body, no keep-alive (spec.md Non-goals). It is
// deliberately narrow — full request parsing (chunked bodies, trailers,
// header folding) is out of scope per spec.md §1; the core only needs
// a Partial/Complete/Error verdict and, on Complete, how many bytes of
// the buffer the request consumed.
package httpparse

import (
	"bytes"
	"fmt"
)

// Status is the verdict of a parse attempt.
type Status int

const (
	// Partial means the buffer does not yet contain a full request
	// line + header block; the caller should read more bytes.
	Partial Status = iota
	// Complete means a full request was parsed; Consumed reports how
	// many leading bytes of the buffer it occupied.
	Complete
	// Error means the buffer contains malformed input that will never
	// become a valid request no matter how many more bytes arrive.
	Error
)

// Request is the subset of an HTTP/1.x request the gateway cares
// about: the method and the path, both compared by exact byte
// equality against the route table (spec.md §4.1).
type Request struct {
	Method string
	Path   string
}

// Result is the outcome of a Parse call.
type Result struct {
	Status   Status
	Consumed int
	Request  Request
	Err      error
}

var headerTerminator = []byte("\r\n\r\n")

// Parse scans buf for a complete HTTP/1.x request (request line plus
// headers, terminated by a blank line). It never looks past the
// terminator, so bodies are never consumed or required.
func Parse(buf []byte) Result {
	idx := bytes.Index(buf, headerTerminator)
	if idx < 0 {
		return Result{Status: Partial}
	}

	head := buf[:idx]
	lineEnd := bytes.Index(head, []byte("\r\n"))
	var line []byte
	if lineEnd < 0 {
		line = head
	} else {
		line = head[:lineEnd]
	}

	req, err := parseRequestLine(line)
	if err != nil {
		return Result{Status: Error, Err: err}
	}

	return Result{
		Status:   Complete,
		Consumed: idx + len(headerTerminator),
		Request:  req,
	}
}

func parseRequestLine(line []byte) (Request, error) {
	parts := bytes.Split(line, []byte(" "))
	if len(parts) != 3 {
		return Request{}, fmt.Errorf("httpparse: malformed request line %q", line)
	}

	method, path, version := parts[0], parts[1], parts[2]

	if len(method) == 0 || len(path) == 0 {
		return Request{}, fmt.Errorf("httpparse: empty method or path in %q", line)
	}
	if !bytes.HasPrefix(version, []byte("HTTP/1.")) {
		return Request{}, fmt.Errorf("httpparse: unsupported version %q", version)
	}

	return Request{Method: string(method), Path: string(path)}, nil
}
