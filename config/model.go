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

// Package config loads the gateway's static startup configuration: the
// listen address and the list of (method, path) -> (module, handler,
// env) application entries. There is no hot reload (see spec.md
// Non-goals) and no component lifecycle manager — this is a one-shot,
// validate-then-freeze load.
package config

// Application describes one configured route: which module file to
// load, which HTTP method and path it answers to, which exported
// function to invoke, and which key/value environment to clone into
// the session's db_get map.
type Application struct {
	FilePath string            `mapstructure:"file_path"`
	Method   string            `mapstructure:"method"`
	URLPath  string            `mapstructure:"url_path"`
	Function string            `mapstructure:"function"`
	Env      map[string]string `mapstructure:"env"`
}

// Config is the fully parsed, validated startup configuration.
type Config struct {
	ListenAddress string        `mapstructure:"listen_address"`
	Applications  []Application `mapstructure:"applications"`
}
