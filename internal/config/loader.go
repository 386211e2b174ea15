// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sqlferry/cli/internal/xdg"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read as configuration.
const EnvPrefix = "SQLFERRY_"

// TokenEnv holds the API token; it is a credential, not a config key.
const TokenEnv = EnvPrefix + "API_TOKEN"

// maxUpwardSearchLevels limits how far up the directory tree to search for the project file.
const maxUpwardSearchLevels = 10

// flagKeys maps the flags that may override configuration to their keys.
var flagKeys = map[string]string{
	"account-id":   "account_id",
	"api-base-url": "api_base_url",
	"persist-to":   "persist_to",
	"verbose":      "verbose",
}

// findProjectRootUpward searches upward from startDir for the project file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit project file; empty searches upward from Dir.
	File string
	// Dir is where the upward search starts; empty uses the CWD.
	Dir string
	// UserFile overrides the user config file; empty uses the XDG location.
	UserFile string
	// Flags are applied last, and only those explicitly set.
	Flags *pflag.FlagSet
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > project file > user file > defaults
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"api_base_url":      DefaultAPIBaseURL,
		"persist_to":        DefaultPersistTo,
		"verbose":           false,
		"poll.interval":     DefaultPollInterval.String(),
		"poll.timeout":      DefaultPollTimeout.String(),
		"poll.max_attempts": 0,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	userFile := opts.UserFile
	if userFile == "" {
		if dir, err := xdg.ConfigPath(); err == nil {
			userFile = filepath.Join(dir, UserFile)
		}
	}
	if userFile != "" {
		if _, err := os.Stat(userFile); err == nil {
			if err := k.Load(file.Provider(userFile), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", userFile, err)
			}
		}
	}

	start := opts.Dir
	if start == "" {
		start, _ = os.Getwd()
	}
	projectFile := opts.File
	projectRoot := ""
	if projectFile != "" {
		if abs, err := filepath.Abs(projectFile); err == nil {
			projectFile = abs
		}
		projectRoot = filepath.Dir(projectFile)
	} else if root := findProjectRootUpward(start); root != "" {
		projectRoot = root
		projectFile = filepath.Join(root, ProjectFile)
	} else {
		projectRoot = start
	}
	if projectFile != "" {
		if err := k.Load(file.Provider(projectFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", projectFile, err)
		}
	}

	// SQLFERRY_POLL__TIMEOUT -> poll.timeout
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		if s == TokenEnv {
			return ""
		}
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if opts.Flags != nil {
		flags := opts.Flags
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot
	cfg.FileUsed = projectFile

	// A --persist-to flag is relative to the CWD, everything else to the project root.
	if opts.Flags != nil && opts.Flags.Changed("persist-to") {
		if abs, err := filepath.Abs(cfg.PersistTo); err == nil {
			cfg.PersistTo = abs
		}
	} else {
		cfg.PersistTo = resolvePathRelativeTo(cfg.PersistTo, projectRoot)
	}
	for i, d := range cfg.Databases {
		if d.MigrationsDir != "" {
			cfg.Databases[i].MigrationsDir = resolvePathRelativeTo(d.MigrationsDir, projectRoot)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
