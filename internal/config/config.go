// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

// Package config holds the small set of settings the CLI reads from a
// YAML file and overrides with flags: the propagation stabilizer's
// iteration cap, the default cycle count for a bare `run`, and the log
// level.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the merged settings the CLI runs with.
type Config struct {
	OscillationLimit int    `yaml:"oscillation_limit"`
	DefaultRunCycles int    `yaml:"default_run_cycles"`
	LogLevel         string `yaml:"log_level"`
}

// Default returns the built-in settings used when no file is given
// and no flag overrides apply.
func Default() Config {
	return Config{
		OscillationLimit: 20,
		DefaultRunCycles: 1,
		LogLevel:         "info",
	}
}

// Load reads path as YAML over the defaults; fields absent from the
// file keep their default value. An empty path returns the defaults
// unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides merges explicit flag values over cfg. A zero value
// for oscillationLimit/runCycles or an empty logLevel means "not set
// on the command line" and leaves the existing value in place.
func (c Config) ApplyOverrides(oscillationLimit, runCycles int, logLevel string) Config {
	if oscillationLimit > 0 {
		c.OscillationLimit = oscillationLimit
	}
	if runCycles > 0 {
		c.DefaultRunCycles = runCycles
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	return c
}
