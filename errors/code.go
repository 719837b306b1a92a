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

package errors

import "strconv"

// CodeError is a small, HTTP-flavored error classification: 4xx for
// faults that originate from configuration or a client request, 5xx
// for faults internal to the gateway or the bytecode engine.
type CodeError uint16

const (
	// UnknownError is the fallback code for errors not raised through
	// this package's constructors.
	UnknownError CodeError = 0

	// RouteNotFound marks a request whose (method, path) has no entry
	// in the route table.
	RouteNotFound CodeError = 404
	// FunctionNotFound marks a module that instantiated successfully
	// but does not export the configured handler name.
	FunctionNotFound CodeError = 4041

	// ConfigInvalid marks a startup configuration load/parse failure.
	ConfigInvalid CodeError = 400

	// InstantiationFailed marks a module that failed to instantiate
	// (bad bytecode, signature mismatch on import resolution).
	InstantiationFailed CodeError = 500
	// TrapFault marks a non-host bytecode trap (stack overflow,
	// out-of-bounds memory, division by zero, indirect-call signature
	// mismatch).
	TrapFault CodeError = 501
	// IncompleteResponse marks a handler that returned without ever
	// completing the prepared response (status and body both set).
	IncompleteResponse CodeError = 502

	// BackendConnectFailed marks a non-blocking connect that resolved
	// to an error or hang-up; surfaced to the handler as -1, not as a
	// gateway-level failure.
	BackendConnectFailed CodeError = 200
	// BackendIOFailed marks a backend read/write that resolved to an
	// error; also surfaced to the handler as -1.
	BackendIOFailed CodeError = 201

	// MemoryOutOfBounds marks a host-call pointer+length pair that
	// fell outside the module's current linear memory.
	MemoryOutOfBounds CodeError = 503

	unknownMessage = "unknown error"
)

var messages = map[CodeError]string{
	RouteNotFound:        "route not found",
	FunctionNotFound:     "function not found",
	ConfigInvalid:        "invalid configuration",
	InstantiationFailed:  "module instantiation failed",
	TrapFault:            "bytecode trap",
	IncompleteResponse:   "handler returned an incomplete response",
	BackendConnectFailed: "backend connect failed",
	BackendIOFailed:      "backend i/o failed",
	MemoryOutOfBounds:    "linear memory access out of bounds",
}

// Uint16 returns the numeric value of the code.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// String implements fmt.Stringer.
func (c CodeError) String() string {
	return strconv.Itoa(int(c))
}

// Message returns the registered human-readable message for the code,
// or a generic fallback if none was registered.
func (c CodeError) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return unknownMessage
}

// Error builds a new Error value carrying this code, the code's
// registered message, and the given parents.
func (c CodeError) Error(parent ...error) Error {
	return New(c, c.Message(), parent...)
}

// Errorf builds a new Error value carrying this code and a formatted
// message, ignoring the registered message for this code.
func (c CodeError) Errorf(pattern string, args ...any) Error {
	return Newf(c, pattern, args...)
}
