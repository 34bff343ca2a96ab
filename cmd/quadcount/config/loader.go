// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileSize is the maximum allowed config file size (1MB).
// Prevents memory issues from a corrupt or hostile file.
const MaxConfigFileSize = 1024 * 1024

//go:embed default_config.yaml
var defaultConfigYAML []byte

var (
	// Global is a singleton instance
	Global QuadcountConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	// create it if it doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "First run detected, creating the config at %s\n", path)
		if err := createDefault(path); err != nil {
			// A read-only home must not block counting; fall back to
			// built-in defaults.
			Global = DefaultConfig()
			return nil
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &Global); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := Global.Validate(); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return nil
}

// configPath resolves the config file location. QUADCOUNT_CONFIG overrides
// the default ~/.quadcount/quadcount.yaml.
func configPath() (string, error) {
	if p := os.Getenv("QUADCOUNT_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".quadcount", "quadcount.yaml"), nil
}

// createDefault writes the embedded default config, comments included, so
// a first-run file documents itself.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, defaultConfigYAML, 0644)
}
