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

// Package wasmhost is the per-session host environment: the mutable
// state a handler module's host-call imports read and write, and the
// wazero registration of the host-call ABI itself (spec.md §4.2).
package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/sabouaram/wasmgate/vm"
)

// Instance is the subset of a module instance the host environment
// and the session need once instantiation completes: its linear
// memory, its exported functions, and the teardown call that frees
// the instance's memory once the session is done with it. api.Module
// satisfies this.
type Instance interface {
	Memory() api.Memory
	ExportedFunction(name string) api.Function
	Close(ctx context.Context) error
}

// Host is one session's host state: the prepared response, the
// backend connection slab, the env key/value map, and the driver used
// by the three suspending host calls. Instance is nil until module
// instantiation completes (spec.md Invariant 3).
type Host struct {
	Instance Instance

	Response *Response
	Conns    *Connections
	DB       map[string]string
	Driver   vm.Suspender

	// Log receives the raw bytes the guest passed to the log host
	// call; the session wires this to its structured logger.
	Log func(msg string)
}

// New builds a fresh Host for one session. db is cloned from the
// matched route's env so that mutations (there are none in this ABI,
// but defensively) never alias the route table's entry.
func New(driver vm.Suspender, db map[string]string, log func(string)) *Host {
	clone := make(map[string]string, len(db))
	for k, v := range db {
		clone[k] = v
	}

	return &Host{
		Response: NewResponse(),
		Conns:    NewConnections(),
		DB:       clone,
		Driver:   driver,
		Log:      log,
	}
}
