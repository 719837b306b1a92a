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

package reactor_test

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/tetratelabs/wazero/api"

	"github.com/sabouaram/wasmgate/config"
	"github.com/sabouaram/wasmgate/reactor"
	"github.com/sabouaram/wasmgate/route"
	"github.com/sabouaram/wasmgate/session"
	"github.com/sabouaram/wasmgate/vm"
	"github.com/sabouaram/wasmgate/wasmhost"
)

// fakeDriver never yields: it mimics a handler module that returns
// immediately without ever touching the response. Together with
// fakeLoader it lets the reactor be built without a real wazero binary;
// the route-miss test below stops at route lookup and never reaches
// either of them.
type fakeDriver struct{}

func (fakeDriver) Start(fn func() (uint64, error)) {}
func (fakeDriver) Resume() vm.Outcome              { return vm.Outcome{Returned: true} }
func (fakeDriver) AddFunctionResult(v int64)       {}

type fakeFunction struct{ api.Function }

type fakeInstance struct{}

func (fakeInstance) Memory() api.Memory                        { return nil }
func (fakeInstance) ExportedFunction(name string) api.Function { return &fakeFunction{} }
func (fakeInstance) Close(ctx context.Context) error           { return nil }

type fakeLoader struct{}

func (fakeLoader) Instantiate(ctx context.Context, filePath string) (wasmhost.Instance, error) {
	return fakeInstance{}, nil
}

func TestReactorRoundTripsRouteMiss(t *testing.T) {
	table := route.Build(&config.Config{})

	r, err := reactor.New("127.0.0.1:0", reactor.Deps{
		Routes: table,
		Loader: fakeLoader{},
		NewDriver: func() session.Driver {
			return fakeDriver{}
		},
	})
	if err != nil {
		t.Fatalf("reactor.New: %v", err)
	}

	addr := r.Addr()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("GET /nope HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("write request: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("reading status line: %v", err)
	}
	if line != "HTTP/1.1 404 Not Found\r\n" {
		t.Fatalf("expected a 404 status line, got %q", line)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reactor.Run did not return after cancellation")
	}
}
