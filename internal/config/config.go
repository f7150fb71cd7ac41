// Package config resolves settings from defaults, a TOML file, the
// environment and flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// FileName is the config file looked up in the working directory and the
// user config dir.
const FileName = "todo.toml"

// Config holds the tool's settings.
type Config struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the built-in settings. An empty Path lets the backend
// pick its default file in the working directory.
func Default() Config {
	return Config{
		Backend:   BackendSQLite,
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Load applies, over the defaults, the file at path (or the first file
// found by Find when path is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = Find()
	} else if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(&cfg)
	cfg.Backend = strings.ToLower(cfg.Backend)
	cfg.Path = expandPath(cfg.Path)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Find returns the first existing config file: ./todo.toml, then
// <user config dir>/todo/todo.toml. It returns "" when neither exists.
func Find() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "todo", FileName))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TODO_PATH"); v != "" {
		cfg.Path = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// Validate checks the backend name.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendJSON:
		return nil
	case "":
		return errors.New("backend is empty")
	default:
		return fmt.Errorf("unknown backend %q: must be %s or %s", c.Backend, BackendSQLite, BackendJSON)
	}
}

// expandPath expands ~/ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
