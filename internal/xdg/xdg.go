// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves the XDG config directory for sqlferry, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "sqlferry"

func base(env string, fallback ...string) (string, error) {
	if b := os.Getenv(env); b != "" {
		return b, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// ConfigPath returns the sqlferry config directory without creating it.
func ConfigPath() (string, error) {
	b, err := base("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(b, appDir), nil
}
