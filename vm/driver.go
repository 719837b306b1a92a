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

// Package vm is the resumable interpreter driver. The underlying Wasm
// engine (wazero) has no steppable, observable function-context stack
// to freeze and thaw, so the driver substitutes a goroutine for the
// frame stack: a session's module invocation runs on its own
// goroutine, and a suspending host call blocks that goroutine on a
// channel receive instead of performing I/O inline. The reactor
// goroutine waits in Resume, selecting on the driver's yield and
// completion channels, only while guest code runs up to its next
// suspension point or return; it never waits on backend I/O, and when
// it has an answer it sends it back down the resume channel.
package vm

import "fmt"

// YieldKind classifies why a Driver's goroutine suspended.
type YieldKind int

const (
	// YieldConnecting corresponds to a suspended tcp_connect call.
	YieldConnecting YieldKind = iota
	// YieldTcpRead corresponds to a suspended tcp_read call.
	YieldTcpRead
	// YieldTcpWrite corresponds to a suspended tcp_write call.
	YieldTcpWrite
)

func (k YieldKind) String() string {
	switch k {
	case YieldConnecting:
		return "Connecting"
	case YieldTcpRead:
		return "TcpRead"
	case YieldTcpWrite:
		return "TcpWrite"
	default:
		return fmt.Sprintf("YieldKind(%d)", int(k))
	}
}

// Yield is the payload a suspending host call hands to the session
// through the driver, mirroring the host-error payload in spec.md
// §4.2's suspension protocol.
type Yield struct {
	Kind YieldKind

	// Addr is set for YieldConnecting.
	Addr string

	// Fd is the backend id for YieldTcpRead/YieldTcpWrite.
	Fd int32

	// Ptr/Cap describe the destination buffer for YieldTcpRead.
	Ptr uint32
	Cap uint32

	// Buf is the bytes to write for YieldTcpWrite, already copied out
	// of linear memory while the instance is quiescent (spec.md §4.4).
	Buf []byte
}

// Outcome is what Resume returns: exactly one of Yield, a final
// return value, or a fatal error (a non-host bytecode trap).
type Outcome struct {
	Yield    *Yield
	Returned bool
	Value    uint64
	Fatal    error
}

type doneResult struct {
	value uint64
	err   error
}

// Suspender is the narrow surface a suspending host-call
// implementation needs from a Driver. Host functions only ever
// suspend; they never start, resume, or inject results.
type Suspender interface {
	Suspend(y Yield) int64
}

// Driver runs one module invocation on a dedicated goroutine and lets
// the caller step through its suspension points one at a time.
type Driver struct {
	yieldCh  chan Yield
	resumeCh chan int64
	doneCh   chan doneResult
}

// New allocates a Driver. Call Start to begin the invocation.
func New() *Driver {
	return &Driver{
		yieldCh:  make(chan Yield),
		resumeCh: make(chan int64),
		doneCh:   make(chan doneResult, 1),
	}
}

// Start launches fn — which must invoke the guest's handler export,
// with host functions that call Suspend when they need to yield — on
// its own goroutine. Start returns immediately; call Resume to drive
// it forward.
func (d *Driver) Start(fn func() (uint64, error)) {
	go func() {
		v, err := fn()
		d.doneCh <- doneResult{value: v, err: err}
	}()
}

// Suspend is called from inside a suspending host function, on the
// invocation goroutine. It hands the yield descriptor to whoever is
// blocked in Resume and then blocks itself until AddFunctionResult
// supplies the value that host call should return.
func (d *Driver) Suspend(y Yield) int64 {
	d.yieldCh <- y
	return <-d.resumeCh
}

// Resume blocks until the invocation goroutine either yields again or
// finishes (normally or with a fatal trap).
func (d *Driver) Resume() Outcome {
	select {
	case y := <-d.yieldCh:
		return Outcome{Yield: &y}
	case r := <-d.doneCh:
		if r.err != nil {
			return Outcome{Fatal: r.err}
		}
		return Outcome{Returned: true, Value: r.value}
	}
}

// AddFunctionResult injects v as the return value of the host call
// that most recently yielded. It must be called exactly once between
// a Resume that returned a Yield and the next call to Resume.
func (d *Driver) AddFunctionResult(v int64) {
	d.resumeCh <- v
}
