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
	"context"
	"testing"

	"github.com/tetratelabs/wazero/api"
)

// fakeABIMemory is a bounds-checked linear memory backing, exercising
// the same out-of-bounds-returns-false contract wazero's real
// api.Memory gives host functions, so a host call that forgets to
// check ok would read or write outside buf rather than failing
// cleanly.
type fakeABIMemory struct {
	api.Memory
	buf []byte
}

func (m *fakeABIMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	start := uint64(offset)
	end := start + uint64(byteCount)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[start:end], true
}

func (m *fakeABIMemory) Write(offset uint32, v []byte) bool {
	start := uint64(offset)
	end := start + uint64(len(v))
	if end > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[start:], v)
	return true
}

type fakeABIModule struct {
	api.Module
	mem *fakeABIMemory
}

func (m *fakeABIModule) Memory() api.Memory { return m.mem }

// writeString places s into mem at offset and returns offset/length
// the way a guest would pass them to a host call.
func writeString(mem *fakeABIMemory, offset uint32, s string) (uint32, uint64) {
	copy(mem.buf[offset:], s)
	return offset, uint64(len(s))
}

func newDbGetFixture(db map[string]string, bufSize int) (*fakeABIModule, *Host) {
	mem := &fakeABIMemory{buf: make([]byte, bufSize)}
	mod := &fakeABIModule{mem: mem}
	h := New(nil, db, nil)
	return mod, h
}

// TestHostDbGetProbeThenFetch exercises S3 (db_get hit) and spec.md §8
// Property 6: a cap=0 length probe is idempotent and a follow-up call
// with out_cap equal to that length returns the full value.
func TestHostDbGetProbeThenFetch(t *testing.T) {
	mod, h := newDbGetFixture(map[string]string{"greeting": "hello"}, 64)
	ctx := WithHost(context.Background(), h)

	keyPtr, keyLen := writeString(mod.mem, 0, "greeting")

	firstProbe := hostDbGet(ctx, mod, keyPtr, keyLen, 0, 0)
	secondProbe := hostDbGet(ctx, mod, keyPtr, keyLen, 0, 0)
	if firstProbe != 5 || secondProbe != 5 {
		t.Fatalf("expected both cap=0 probes to return length 5 idempotently, got %d then %d", firstProbe, secondProbe)
	}

	outPtr := uint32(32)
	n := hostDbGet(ctx, mod, keyPtr, keyLen, outPtr, uint64(firstProbe))
	if n != 5 {
		t.Fatalf("expected the follow-up fetch to return 5, got %d", n)
	}
	if string(mod.mem.buf[outPtr:outPtr+5]) != "hello" {
		t.Fatalf("expected %q written at out_ptr, got %q", "hello", mod.mem.buf[outPtr:outPtr+5])
	}
}

// TestHostDbGetMiss exercises S4: a key absent from the route's env
// map returns -1 regardless of out_cap.
func TestHostDbGetMiss(t *testing.T) {
	mod, h := newDbGetFixture(map[string]string{"greeting": "hello"}, 64)
	ctx := WithHost(context.Background(), h)

	keyPtr, keyLen := writeString(mod.mem, 0, "missing")

	if n := hostDbGet(ctx, mod, keyPtr, keyLen, 0, 0); n != -1 {
		t.Fatalf("expected a miss probe to return -1, got %d", n)
	}
	if n := hostDbGet(ctx, mod, keyPtr, keyLen, 40, 16); n != -1 {
		t.Fatalf("expected a miss fetch to return -1 without writing, got %d", n)
	}
}

// TestHostDbGetTruncatesToCap covers a follow-up call whose out_cap is
// smaller than the value: the write truncates silently and the
// returned length is still the value's full length, not the
// truncated write count (spec.md §4.2).
func TestHostDbGetTruncatesToCap(t *testing.T) {
	mod, h := newDbGetFixture(map[string]string{"greeting": "hello world"}, 64)
	ctx := WithHost(context.Background(), h)

	keyPtr, keyLen := writeString(mod.mem, 0, "greeting")

	outPtr := uint32(32)
	n := hostDbGet(ctx, mod, keyPtr, keyLen, outPtr, 5)
	if n != 11 {
		t.Fatalf("expected the reported length to be the full 11 bytes, got %d", n)
	}
	if string(mod.mem.buf[outPtr:outPtr+5]) != "hello" {
		t.Fatalf("expected only the first 5 bytes truncated into out_ptr, got %q", mod.mem.buf[outPtr:outPtr+5])
	}
}

// TestHostDbGetOutOfBoundsKeyPointer covers spec.md §8 Property 4:
// a key pointer/length describing memory outside the sandbox must
// fail the Read and return -1, never read past buf's end.
func TestHostDbGetOutOfBoundsKeyPointer(t *testing.T) {
	mod, h := newDbGetFixture(map[string]string{"greeting": "hello"}, 16)
	ctx := WithHost(context.Background(), h)

	if n := hostDbGet(ctx, mod, 8, 9, 0, 0); n != -1 {
		t.Fatalf("expected an out-of-bounds key pointer to return -1, got %d", n)
	}
}

// TestHostDbGetOutOfBoundsOutPointer covers the same property for the
// output side: out_ptr/out_cap describing memory past buf's end must
// fail the Write and return -1, not silently succeed into adjacent
// memory.
func TestHostDbGetOutOfBoundsOutPointer(t *testing.T) {
	mod, h := newDbGetFixture(map[string]string{"greeting": "hello"}, 16)
	ctx := WithHost(context.Background(), h)

	keyPtr, keyLen := writeString(mod.mem, 0, "greeting")

	if n := hostDbGet(ctx, mod, keyPtr, keyLen, 12, 10); n != -1 {
		t.Fatalf("expected an out-of-bounds out pointer to return -1, got %d", n)
	}
}
