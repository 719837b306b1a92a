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

package wasmhost_test

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/wasmgate/wasmhost"
)

func TestConnectionsSetAndGet(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	c := wasmhost.NewConnections()
	c.Set(3, int(r.Fd()))

	got, ok := c.Get(3)
	if !ok || got != int(r.Fd()) {
		t.Fatalf("expected to retrieve the fd set at 3, got %d, %v", got, ok)
	}

	if _, ok := c.Get(0); ok {
		t.Fatal("expected no connection at an unset index")
	}
	if _, ok := c.Get(-1); ok {
		t.Fatal("expected no connection at a negative index")
	}
}

func TestConnectionsCloseAll(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	defer w.Close()

	c := wasmhost.NewConnections()
	c.Set(0, int(r.Fd()))

	c.CloseAll()

	if err := unix.SetNonblock(int(r.Fd()), true); err == nil {
		t.Fatal("expected operating on a closed fd to fail")
	}
}
