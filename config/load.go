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

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	liberr "github.com/sabouaram/wasmgate/errors"
)

// Load reads and validates the configuration at path. The format is
// sniffed from the file extension (toml, yaml, json, ...); the
// canonical on-disk shape is the TOML one shown in spec.md §6.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, liberr.ConfigInvalid.Errorf("reading %s: %v", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, liberr.ConfigInvalid.Errorf("parsing %s: %v", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ListenAddress == "" {
		return liberr.ConfigInvalid.Errorf("listen_address is required")
	}

	for i, app := range cfg.Applications {
		if app.FilePath == "" {
			return liberr.ConfigInvalid.Errorf("applications[%d]: file_path is required", i)
		}
		if app.Method == "" {
			return liberr.ConfigInvalid.Errorf("applications[%d]: method is required", i)
		}
		if app.URLPath == "" {
			return liberr.ConfigInvalid.Errorf("applications[%d]: url_path is required", i)
		}
		if app.Function == "" {
			return liberr.ConfigInvalid.Errorf("applications[%d]: function is required", i)
		}
	}

	return nil
}

// String renders a Config for diagnostics (startup logging).
func (c *Config) String() string {
	return fmt.Sprintf("Config{listen=%s, applications=%d}", c.ListenAddress, len(c.Applications))
}
