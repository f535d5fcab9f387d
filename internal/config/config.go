// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the dashboard configuration from an optional
// YAML file, with environment-driven bind address selection for
// hosted deployments.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all dashboard settings.
type Config struct {
	// Addr is the listen address used for local runs.
	Addr string `yaml:"addr"`

	// Database is the prepared dataset path written by prep and
	// read by serve.
	Database string `yaml:"database"`

	// CacheDir is where prep downloads the raw source files.
	CacheDir string `yaml:"cache_dir"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:     "127.0.0.1:8050",
		Database: "obesity.db",
		CacheDir: "data",
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// BindAddr picks the listen address. A PORT environment variable is
// the hosted-deployment signal: when present the server binds all
// interfaces on that port, otherwise it uses the configured local
// address.
func (c Config) BindAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return c.Addr
}

// ZapLevel parses the configured log level.
func (c Config) ZapLevel() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("bad log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
