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

// Package gateway wires a loaded configuration into a running reactor:
// it owns the wazero runtime, the module cache, and the route table,
// and is the thing cmd/gateway starts and stops (spec.md §6's
// `gateway <config_file>` process lifecycle, C6 in spec.md's component
// table).
package gateway

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"

	"github.com/sabouaram/wasmgate/config"
	liblog "github.com/sabouaram/wasmgate/logger"
	"github.com/sabouaram/wasmgate/reactor"
	"github.com/sabouaram/wasmgate/route"
	"github.com/sabouaram/wasmgate/wasmhost"
)

// Gateway is one running instance: a bound reactor plus the wazero
// runtime backing every session's module instantiation.
type Gateway struct {
	rt  wazero.Runtime
	r   *reactor.Reactor
	log liblog.Logger
}

// New loads cfg, compiles every distinct module file the route table
// references, and binds the listening socket. A module that fails to
// compile fails startup here rather than a live request's first hit.
// Run must be called to actually start serving.
func New(ctx context.Context, cfg *config.Config, log liblog.Logger) (*Gateway, error) {
	rt := wazero.NewRuntime(ctx)

	if err := wasmhost.Register(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("registering host module: %w", err)
	}

	cache := wasmhost.NewModuleCache(rt)
	table := route.Build(cfg)

	if err := cache.PreloadAll(ctx, table.FilePaths()); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("pre-loading wasm modules: %w", err)
	}

	r, err := reactor.New(cfg.ListenAddress, reactor.Deps{
		Routes: table,
		Loader: cache,
		Log:    log,
	})
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("binding %s: %w", cfg.ListenAddress, err)
	}

	log.Entry().
		FieldAdd("address", cfg.ListenAddress).
		FieldAdd("routes", table.Len()).
		Info("gateway listening")

	return &Gateway{rt: rt, r: r, log: log}, nil
}

// Run blocks serving requests until ctx is cancelled, then tears down
// the reactor and the wazero runtime.
func (g *Gateway) Run(ctx context.Context) error {
	err := g.r.Run(ctx)
	g.r.Close()
	g.rt.Close(context.Background())
	return err
}
