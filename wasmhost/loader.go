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
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"

	liberr "github.com/sabouaram/wasmgate/errors"
)

// ModuleCache compiles each configured module file exactly once and
// instantiates a fresh, independent module per session from the
// cached wazero.CompiledModule — compilation is the expensive part
// (bytecode validation, ahead-of-time codegen), instantiation is
// cheap and gives every session its own linear memory and globals
// (spec.md Invariant: sessions never share interpreter state).
type ModuleCache struct {
	rt wazero.Runtime

	mu      sync.Mutex
	modules map[string]wazero.CompiledModule
}

// NewModuleCache wraps rt, which must already have the "env" host
// module registered via Register.
func NewModuleCache(rt wazero.Runtime) *ModuleCache {
	return &ModuleCache{rt: rt, modules: make(map[string]wazero.CompiledModule)}
}

// Instantiate satisfies session.Loader: it compiles filePath on first
// use (caching the result for every later session that routes to the
// same module) and always returns a brand-new instance.
func (c *ModuleCache) Instantiate(ctx context.Context, filePath string) (Instance, error) {
	compiled, err := c.compiled(ctx, filePath)
	if err != nil {
		return nil, err
	}

	// Each session gets its own module instance with an unguessable,
	// unique name: wazero rejects a second instantiation under a name
	// already in use on the same runtime, and two sessions routing to
	// the same file happen concurrently.
	mod, err := c.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(uuid.NewString()))
	if err != nil {
		return nil, liberr.InstantiationFailed.Error(err)
	}
	return mod, nil
}

// PreloadAll compiles every file in filePaths up front, so a bad or
// missing module fails gateway startup instead of a live request's
// first hit (spec.md §2's C2 pre-loads module bytecode once at
// startup; §3's Module is "loaded once per distinct file path at
// startup," not on first route match). It stops at the first failure.
func (c *ModuleCache) PreloadAll(ctx context.Context, filePaths []string) error {
	for _, p := range filePaths {
		if _, err := c.compiled(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (c *ModuleCache) compiled(ctx context.Context, filePath string) (wazero.CompiledModule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.modules[filePath]; ok {
		return m, nil
	}

	bin, err := os.ReadFile(filePath)
	if err != nil {
		return nil, liberr.InstantiationFailed.Error(fmt.Errorf("reading %s: %w", filePath, err))
	}

	m, err := c.rt.CompileModule(ctx, bin)
	if err != nil {
		return nil, liberr.InstantiationFailed.Error(fmt.Errorf("compiling %s: %w", filePath, err))
	}

	c.modules[filePath] = m
	return m, nil
}
