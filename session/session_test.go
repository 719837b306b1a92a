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

package session_test

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero/api"
	"golang.org/x/sys/unix"

	"github.com/sabouaram/wasmgate/config"
	"github.com/sabouaram/wasmgate/route"
	"github.com/sabouaram/wasmgate/session"
	"github.com/sabouaram/wasmgate/vm"
	"github.com/sabouaram/wasmgate/wasmhost"
)

// fakeDriver scripts a sequence of vm.Outcome values, letting tests
// drive the session state machine through suspension scenarios
// without a real wazero module (see SPEC_FULL.md §8 EXPANSION).
type fakeDriver struct {
	outcomes []vm.Outcome
	pos      int
	injected []int64
}

func (d *fakeDriver) Start(fn func() (uint64, error)) {}

func (d *fakeDriver) Resume() vm.Outcome {
	if d.pos >= len(d.outcomes) {
		return vm.Outcome{Returned: true}
	}
	o := d.outcomes[d.pos]
	d.pos++
	return o
}

func (d *fakeDriver) AddFunctionResult(v int64) {
	d.injected = append(d.injected, v)
}

// fakeMemory implements wazero's api.Memory, backed by a plain byte
// slice, exercising only Write since that is all the session calls
// directly (host calls go through the real wazero memory in
// production).
type fakeMemory struct {
	api.Memory
	buf []byte
}

func (m *fakeMemory) Write(offset uint32, v []byte) bool {
	if uint64(offset)+uint64(len(v)) > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[offset:], v)
	return true
}

// fakeFunction is a non-nil api.Function stand-in: tests never invoke
// it directly since fakeDriver.Start never calls the closure wrapping
// it, but instantiate's nil check requires ExportedFunction to return
// something.
type fakeFunction struct {
	api.Function
}

type fakeInstance struct {
	mem *fakeMemory
	fn  api.Function
}

func (i *fakeInstance) Memory() api.Memory                        { return i.mem }
func (i *fakeInstance) ExportedFunction(name string) api.Function { return i.fn }
func (i *fakeInstance) Close(ctx context.Context) error           { return nil }

type fakeLoader struct {
	instance wasmhost.Instance
	err      error
}

func (l *fakeLoader) Instantiate(ctx context.Context, filePath string) (wasmhost.Instance, error) {
	return l.instance, l.err
}

// socketpair returns two connected, non-blocking stream socket fds
// standing in for a client/server or gateway/backend connection
// without needing a real listening socket.
func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("set nonblock: %v", err)
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		t.Fatalf("set nonblock: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func newTestDeps(instance wasmhost.Instance, driver *fakeDriver) session.Deps {
	tbl := route.Build(&config.Config{
		Applications: []config.Application{
			{FilePath: "hello.wasm", Method: "GET", URLPath: "/hello", Function: "hello"},
		},
	})

	return session.Deps{
		Routes: tbl,
		Loader: &fakeLoader{instance: instance},
		NewDriver: func() session.Driver {
			return driver
		},
	}
}

func TestSessionRouteMissClosesWith404(t *testing.T) {
	gatewayFD, peerFD := socketpair(t)
	deps := newTestDeps(nil, &fakeDriver{})
	s := session.New("s-1", gatewayFD, deps)

	if _, err := unix.Write(peerFD, []byte("GET /missing HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("writing request: %v", err)
	}
	s.ClientEvent(true, false, false, false)

	out := s.Execute()
	if out.Result != session.WouldBlock {
		t.Fatalf("expected WouldBlock waiting to write the 404, got %v", out.Result)
	}

	s.ClientEvent(false, true, false, false)
	out = s.Execute()
	if out.Result != session.Close {
		t.Fatalf("expected Close, got %v", out.Result)
	}
}

func TestSessionBackendRoundTripSequencesStates(t *testing.T) {
	mem := &fakeMemory{buf: make([]byte, 256)}
	instance := &fakeInstance{mem: mem, fn: &fakeFunction{}}

	driver := &fakeDriver{
		outcomes: []vm.Outcome{
			{Yield: &vm.Yield{Kind: vm.YieldConnecting, Addr: "127.0.0.1:9000"}},
			{Yield: &vm.Yield{Kind: vm.YieldTcpWrite, Fd: 0, Buf: []byte("hello\n")}},
			{Yield: &vm.Yield{Kind: vm.YieldTcpRead, Fd: 0, Ptr: 0, Cap: 100}},
			{Returned: true, Value: 0},
		},
	}

	gatewayFD, peerFD := socketpair(t)
	deps := newTestDeps(instance, driver)
	s := session.New("s-5", gatewayFD, deps)

	if _, err := unix.Write(peerFD, []byte("GET /hello HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("writing request: %v", err)
	}
	s.ClientEvent(true, false, false, false)

	out := s.Execute()
	if out.Result != session.ConnectBackend || out.Addr != "127.0.0.1:9000" {
		t.Fatalf("expected ConnectBackend(127.0.0.1:9000), got %+v", out)
	}
	if s.Tag() != session.WaitingForBackendConnect {
		t.Fatalf("expected WaitingForBackendConnect, got %v", s.Tag())
	}

	gatewaySideOfBackend, testSideOfBackend := socketpair(t)
	s.AddBackend(gatewaySideOfBackend, 0)
	s.BackendEvent(0, false, true, false, false)

	out = s.Execute()
	if out.Result != session.WouldBlock || s.Tag() != session.TcpWrite {
		t.Fatalf("expected WouldBlock in TcpWrite after connect resolves and the handler yields its write, got %+v tag=%v", out, s.Tag())
	}

	// Injecting the connect result resumed the handler inside that same
	// Execute call, which surfaced its TcpWrite yield; signal the backend
	// writable so the write is performed.
	s.BackendEvent(0, false, true, false, false)
	out = s.Execute()
	if s.Tag() != session.TcpRead && s.Tag() != session.TcpWrite {
		t.Fatalf("expected the session to be servicing a backend yield, got tag=%v out=%+v", s.Tag(), out)
	}

	got := make([]byte, 16)
	n, err := unix.Read(testSideOfBackend, got)
	if err != nil {
		t.Fatalf("reading what the session wrote to the backend: %v", err)
	}
	if string(got[:n]) != "hello\n" {
		t.Fatalf("expected the session to write %q to the backend, got %q", "hello\n", got[:n])
	}

	if _, err := unix.Write(testSideOfBackend, []byte("world\n")); err != nil {
		t.Fatalf("writing backend response: %v", err)
	}
	s.BackendEvent(0, true, false, false, false)
	out = s.Execute()
	if out.Result != session.WouldBlock {
		t.Fatalf("expected WouldBlock waiting to write the final response, got %+v", out)
	}

	s.ClientEvent(false, true, false, false)
	out = s.Execute()
	if out.Result != session.Close {
		t.Fatalf("expected Close after handler returns, got %+v", out)
	}

	if string(mem.buf[:6]) != "world\n" {
		t.Fatalf("expected the backend's reply to be written into linear memory, got %q", mem.buf[:6])
	}
	if len(driver.injected) != 3 {
		t.Fatalf("expected 3 injected values (connect id, bytes written, bytes read), got %v", driver.injected)
	}
	if driver.injected[0] != 0 {
		t.Fatalf("expected backend id 0 injected for connect, got %d", driver.injected[0])
	}
	if driver.injected[1] != 6 {
		t.Fatalf("expected 6 bytes written injected, got %d", driver.injected[1])
	}
	if driver.injected[2] != 6 {
		t.Fatalf("expected 6 bytes read injected, got %d", driver.injected[2])
	}
}
