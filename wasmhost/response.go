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

package wasmhost

import (
	"bytes"
	"strconv"
)

// Header is one response header; order and duplicates are preserved,
// matching spec.md §3's "ordered sequence of (name, value)".
type Header struct {
	Name  string
	Value string
}

// Response accumulates the HTTP response a handler builds through the
// response_* host calls. It is never reset once materialized onto the
// wire — a session owns exactly one per handler invocation.
type Response struct {
	statusSet bool
	status    uint16
	reason    string

	headers []Header

	bodySet bool
	body    []byte
}

// NewResponse returns an empty, incomplete Response.
func NewResponse() *Response {
	return &Response{}
}

// SetStatusLine records the status code and reason phrase. Repeated
// calls overwrite the previous value (spec.md Invariant 4 — handlers
// that do this are buggy, not violating the protocol).
func (r *Response) SetStatusLine(status uint16, reason string) {
	r.status = status
	r.reason = reason
	r.statusSet = true
}

// AddHeader appends a header, preserving insertion order and allowing
// duplicate names.
func (r *Response) AddHeader(name, value string) {
	r.headers = append(r.headers, Header{Name: name, Value: value})
}

// SetBody records the response body. Repeated calls overwrite.
func (r *Response) SetBody(body []byte) {
	r.body = body
	r.bodySet = true
}

// Complete reports whether both status and body have been set — the
// only condition under which a response may be written to the client
// (spec.md §3).
func (r *Response) Complete() bool {
	return r.statusSet && r.bodySet
}

// Status returns the status code set via SetStatusLine, if any. Used
// for the session-close debug log line, not for rendering (Bytes
// applies its own 500 fallback independently).
func (r *Response) Status() (uint16, bool) {
	return r.status, r.statusSet
}

// Bytes renders the response as wire bytes: a status line, each
// header, a blank line, then the body. Callers should check Complete
// first; Bytes still renders a best-effort result when it isn't, so
// that the session's 500 fallback (spec.md §7) has something to log.
func (r *Response) Bytes() []byte {
	var buf bytes.Buffer

	status := r.status
	reason := r.reason
	if !r.statusSet {
		status = 500
		reason = "Internal Server Error"
	}

	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(int(status)))
	buf.WriteByte(' ')
	buf.WriteString(reason)
	buf.WriteString("\r\n")

	for _, h := range r.headers {
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(r.body)

	return buf.Bytes()
}
