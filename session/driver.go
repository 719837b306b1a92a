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

package session

import (
	"context"

	"github.com/sabouaram/wasmgate/vm"
	"github.com/sabouaram/wasmgate/wasmhost"
)

// Driver is the subset of *vm.Driver the session depends on. It is an
// interface so tests can drive the state machine with a scripted fake
// instead of a real wazero module, making S5/S6-shaped suspension
// scenarios deterministic (see SPEC_FULL.md §8 EXPANSION).
type Driver interface {
	Start(fn func() (uint64, error))
	Resume() vm.Outcome
	AddFunctionResult(v int64)
}

// Loader instantiates a compiled module for one session, binding the
// host's ABI as its imports. filePath identifies which pre-loaded
// module to instantiate (spec.md §4.1's module_ref).
type Loader interface {
	Instantiate(ctx context.Context, filePath string) (wasmhost.Instance, error)
}
