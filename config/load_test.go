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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sabouaram/wasmgate/config"
	liberr "github.com/sabouaram/wasmgate/errors"
)

const sampleConfig = `
listen_address = "127.0.0.1:8080"

[[applications]]
file_path = "hello.wasm"
method = "GET"
url_path = "/hello"
function = "hello"

[applications.env]
backend = "127.0.0.1:9000"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ListenAddress != "127.0.0.1:8080" {
		t.Fatalf("unexpected listen address: %q", cfg.ListenAddress)
	}
	if len(cfg.Applications) != 1 {
		t.Fatalf("expected 1 application, got %d", len(cfg.Applications))
	}

	app := cfg.Applications[0]
	if app.Method != "GET" || app.URLPath != "/hello" || app.Function != "hello" {
		t.Fatalf("unexpected application: %+v", app)
	}
	if app.Env["backend"] != "127.0.0.1:9000" {
		t.Fatalf("unexpected env: %+v", app.Env)
	}
}

func TestLoadMissingListenAddress(t *testing.T) {
	path := writeConfig(t, `
[[applications]]
file_path = "hello.wasm"
method = "GET"
url_path = "/hello"
function = "hello"
`)

	_, err := config.Load(path)
	if !liberr.HasCode(err, liberr.ConfigInvalid) {
		t.Fatalf("expected ConfigInvalid, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !liberr.HasCode(err, liberr.ConfigInvalid) {
		t.Fatalf("expected ConfigInvalid, got %v", err)
	}
}
