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

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/sabouaram/wasmgate/vm"
)

// ModuleName is the import module name handler bytecode must declare
// its host-call imports under.
const ModuleName = "env"

type hostKey struct{}

// WithHost returns a context carrying h, for use as the ctx argument
// to the guest's exported handler function. Every host-call
// implementation below recovers h via this key, since wazero passes
// call-scoped context through to host functions unchanged.
func WithHost(ctx context.Context, h *Host) context.Context {
	return context.WithValue(ctx, hostKey{}, h)
}

func hostFrom(ctx context.Context) *Host {
	h, _ := ctx.Value(hostKey{}).(*Host)
	return h
}

// Register builds the "env" host module exposing the ABI in spec.md
// §4.2. It is built once against a shared wazero.Runtime; per-session
// state is threaded through per-call via WithHost, not through
// closures, so one registration serves every session.
func Register(ctx context.Context, rt wazero.Runtime) error {
	_, err := rt.NewHostModuleBuilder(ModuleName).
		NewFunctionBuilder().WithFunc(hostLog).Export("log").
		NewFunctionBuilder().WithFunc(hostResponseSetStatusLine).Export("response_set_status_line").
		NewFunctionBuilder().WithFunc(hostResponseSetHeader).Export("response_set_header").
		NewFunctionBuilder().WithFunc(hostResponseSetBody).Export("response_set_body").
		NewFunctionBuilder().WithFunc(hostDbGet).Export("db_get").
		NewFunctionBuilder().WithFunc(hostTcpConnect).Export("tcp_connect").
		NewFunctionBuilder().WithFunc(hostTcpWrite).Export("tcp_write").
		NewFunctionBuilder().WithFunc(hostTcpRead).Export("tcp_read").
		Instantiate(ctx)
	return err
}

func hostLog(ctx context.Context, mod api.Module, ptr uint32, length uint64) {
	h := hostFrom(ctx)
	b, ok := mod.Memory().Read(ptr, uint32(length))
	if !ok || h.Log == nil {
		return
	}
	h.Log(string(b))
}

func hostResponseSetStatusLine(ctx context.Context, mod api.Module, status uint32, reasonPtr uint32, reasonLen uint64) {
	h := hostFrom(ctx)
	reason, ok := mod.Memory().Read(reasonPtr, uint32(reasonLen))
	if !ok {
		return
	}
	h.Response.SetStatusLine(uint16(status), string(reason))
}

func hostResponseSetHeader(ctx context.Context, mod api.Module, namePtr uint32, nameLen uint64, valPtr uint32, valLen uint64) {
	h := hostFrom(ctx)
	name, ok := mod.Memory().Read(namePtr, uint32(nameLen))
	if !ok {
		return
	}
	val, ok := mod.Memory().Read(valPtr, uint32(valLen))
	if !ok {
		return
	}
	h.Response.AddHeader(string(name), string(val))
}

func hostResponseSetBody(ctx context.Context, mod api.Module, ptr uint32, length uint64) {
	h := hostFrom(ctx)
	b, ok := mod.Memory().Read(ptr, uint32(length))
	if !ok {
		return
	}
	h.Response.SetBody(append([]byte(nil), b...))
}

// hostDbGet implements the two-phase probe calling convention: a
// length-only probe (out_cap=0) returns the length without writing
// anything, and a follow-up call with a large enough out_cap writes
// the value, truncated silently if out_cap is too small (spec.md
// §4.2).
func hostDbGet(ctx context.Context, mod api.Module, keyPtr uint32, keyLen uint64, outPtr uint32, outCap uint64) int64 {
	h := hostFrom(ctx)
	key, ok := mod.Memory().Read(keyPtr, uint32(keyLen))
	if !ok {
		return -1
	}

	val, found := h.DB[string(key)]
	if !found {
		return -1
	}

	if outCap > 0 {
		write := outCap
		if uint64(len(val)) < write {
			write = uint64(len(val))
		}
		if write > 0 {
			if !mod.Memory().Write(outPtr, []byte(val)[:write]) {
				return -1
			}
		}
	}

	return int64(len(val))
}

func hostTcpConnect(ctx context.Context, mod api.Module, addrPtr uint32, addrLen uint64) int32 {
	h := hostFrom(ctx)
	addr, ok := mod.Memory().Read(addrPtr, uint32(addrLen))
	if !ok {
		return -1
	}
	return int32(h.Driver.Suspend(vm.Yield{Kind: vm.YieldConnecting, Addr: string(addr)}))
}

func hostTcpWrite(ctx context.Context, mod api.Module, fd uint32, ptr uint32, length uint64) int64 {
	h := hostFrom(ctx)
	buf, ok := mod.Memory().Read(ptr, uint32(length))
	if !ok {
		return -1
	}
	cp := append([]byte(nil), buf...)
	return h.Driver.Suspend(vm.Yield{Kind: vm.YieldTcpWrite, Fd: int32(fd), Buf: cp})
}

func hostTcpRead(ctx context.Context, mod api.Module, fd uint32, ptr uint32, capacity uint64) int64 {
	h := hostFrom(ctx)
	return h.Driver.Suspend(vm.Yield{Kind: vm.YieldTcpRead, Fd: int32(fd), Ptr: ptr, Cap: uint32(capacity)})
}
