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
	"strings"
	"testing"

	"github.com/sabouaram/wasmgate/wasmhost"
)

func TestResponseCompleteRequiresStatusAndBody(t *testing.T) {
	r := wasmhost.NewResponse()
	if r.Complete() {
		t.Fatal("expected incomplete response")
	}

	r.SetStatusLine(200, "Ok")
	if r.Complete() {
		t.Fatal("expected incomplete response with only a status line")
	}

	r.SetBody([]byte("hi"))
	if !r.Complete() {
		t.Fatal("expected complete response")
	}
}

func TestResponseBytesOrdersHeadersAndBody(t *testing.T) {
	r := wasmhost.NewResponse()
	r.SetStatusLine(200, "Ok")
	r.AddHeader("Content-length", "23")
	r.SetBody([]byte("Hello world from wasm!\n"))

	got := string(r.Bytes())
	want := "HTTP/1.1 200 Ok\r\nContent-length: 23\r\n\r\nHello world from wasm!\n"
	if got != want {
		t.Fatalf("unexpected bytes:\n got: %q\nwant: %q", got, want)
	}
}

func TestResponseBytesFallsBackTo500WhenStatusUnset(t *testing.T) {
	r := wasmhost.NewResponse()
	r.SetBody([]byte("oops"))

	got := string(r.Bytes())
	if !strings.HasPrefix(got, "HTTP/1.1 500 ") {
		t.Fatalf("expected a 500 fallback status line, got %q", got)
	}
}
