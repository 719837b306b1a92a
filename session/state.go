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

// Package session implements the gateway's per-connection state
// machine: it sequences reading a request, resolving a route,
// instantiating a module, driving the interpreter, servicing its I/O
// yields, and writing the response (spec.md §4.4).
package session

import "fmt"

// Tag is the session state machine's primary invariant carrier
// (spec.md §3's "Session state tag").
type Tag int

const (
	// WaitingForRequest is the initial state: reading the client
	// socket until a full request line is parsed.
	WaitingForRequest Tag = iota
	// Executing means the interpreter is being driven and is not
	// currently suspended on backend I/O.
	Executing
	// WaitingForBackendConnect means a tcp_connect yielded and the
	// reactor is performing the non-blocking connect.
	WaitingForBackendConnect
	// TcpRead means a tcp_read yielded and the session is waiting for
	// the backend socket to become readable.
	TcpRead
	// TcpWrite means a tcp_write yielded and the session is waiting
	// for the backend socket to become writable.
	TcpWrite
	// Done is terminal; any transition attempted from here is a bug.
	Done
)

func (t Tag) String() string {
	switch t {
	case WaitingForRequest:
		return "WaitingForRequest"
	case Executing:
		return "Executing"
	case WaitingForBackendConnect:
		return "WaitingForBackendConnect"
	case TcpRead:
		return "TcpRead"
	case TcpWrite:
		return "TcpWrite"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// StepResult is what Execute returns to the reactor after it has made
// as much progress as it can without another readiness event.
type StepResult int

const (
	// Continue means Execute should be called again immediately; it is
	// never returned to the reactor, only used internally by the
	// execute loop.
	Continue StepResult = iota
	// WouldBlock means the session is waiting on a future reactor
	// event and should be left alone until one arrives.
	WouldBlock
	// Close means the session is finished and its slot should be
	// dropped.
	Close
	// ConnectBackend means the session wants the reactor to perform a
	// non-blocking connect to Outcome.Addr and then call AddBackend.
	ConnectBackend
)

// Outcome is the result of one Execute call.
type Outcome struct {
	Result StepResult
	Addr   string
}

// CloseReason records why a session ended, for the terminal debug log
// line recovered from original_source/src/vm.rs's invocation-result
// logging (see SPEC_FULL.md §6 EXPANSION).
type CloseReason int

const (
	CloseNormal CloseReason = iota
	CloseParseError
	CloseOversizedRequest
	CloseRouteMiss
	CloseFunctionMissing
	CloseInstantiateFailed
	CloseFatalTrap
	CloseIncompleteResponse
	CloseIOError
)

func (r CloseReason) String() string {
	switch r {
	case CloseNormal:
		return "normal"
	case CloseParseError:
		return "parse-error"
	case CloseOversizedRequest:
		return "oversized-request"
	case CloseRouteMiss:
		return "route-miss"
	case CloseFunctionMissing:
		return "function-missing"
	case CloseInstantiateFailed:
		return "instantiate-failed"
	case CloseFatalTrap:
		return "fatal-trap"
	case CloseIncompleteResponse:
		return "incomplete-response"
	case CloseIOError:
		return "io-error"
	default:
		return fmt.Sprintf("CloseReason(%d)", int(r))
	}
}
