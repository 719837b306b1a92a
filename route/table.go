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

// Package route holds the gateway's startup-built, read-only lookup
// from (method, path) to the wasm module and function that serves it.
// There is no pattern matching, no wildcards, and no mutation once
// Build returns (spec.md §4.1) — a config reload would require a
// fresh Table, not an update to this one.
package route

import (
	"fmt"

	liberr "github.com/sabouaram/wasmgate/errors"

	"github.com/sabouaram/wasmgate/config"
)

// Entry is what a route resolves to: the compiled module file to
// instantiate, the exported function to invoke, and the env map to
// expose through db_get.
type Entry struct {
	FilePath string
	Function string
	Env      map[string]string
}

type key struct {
	method string
	path   string
}

// Table is an immutable (method, path) -> Entry index.
type Table struct {
	entries map[key]Entry
}

// Build constructs a Table from a validated Config. When two
// applications declare the same (method, path) pair, the later entry
// in the list wins — config order is significant, matching the
// last-wins collision rule in spec.md §4.1.
func Build(cfg *config.Config) *Table {
	t := &Table{entries: make(map[key]Entry, len(cfg.Applications))}

	for _, app := range cfg.Applications {
		t.entries[key{method: app.Method, path: app.URLPath}] = Entry{
			FilePath: app.FilePath,
			Function: app.Function,
			Env:      app.Env,
		}
	}

	return t
}

// Lookup resolves a (method, path) pair. ok is false when no
// application was configured for that exact pair.
func (t *Table) Lookup(method, path string) (Entry, bool) {
	e, ok := t.entries[key{method: method, path: path}]
	return e, ok
}

// Len reports how many distinct (method, path) routes are registered.
func (t *Table) Len() int {
	return len(t.entries)
}

// FilePaths returns the distinct module file paths referenced by the
// table, in no particular order, so a caller can pre-load every module
// a route could possibly need (spec.md §2's C2: module bytecode is
// loaded once per distinct file path at startup, not per request).
func (t *Table) FilePaths() []string {
	seen := make(map[string]struct{}, len(t.entries))
	paths := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		if _, ok := seen[e.FilePath]; ok {
			continue
		}
		seen[e.FilePath] = struct{}{}
		paths = append(paths, e.FilePath)
	}
	return paths
}

// NotFoundError builds the gateway error returned when a request
// matches no configured route.
func NotFoundError(method, path string) error {
	return liberr.RouteNotFound.Error(fmt.Errorf("no route for %s %s", method, path))
}
