package cliapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds CKT's non-functional tuning knobs. None of it affects
// circuit semantics: every field here is read-path/write-path plumbing.
type Config struct {
	// DirectIO requests O_DIRECT (see pkg/fs) for the v5a reads extract
	// performs, bypassing the page cache for large sequential circuit scans.
	DirectIO bool `json:"direct_io,omitempty"` //nolint:tagliatelle // snake_case config file

	// IOBufferSize is a writer aggregation buffer size in bytes. It is
	// parsed and merged, but no command reads it: writers always use their
	// package default.
	IOBufferSize int `json:"io_buffer_size,omitempty"` //nolint:tagliatelle

	// PageSize is a read-side triple buffer page size in bytes. It is
	// parsed and merged, but no command reads it: readers always use their
	// package default.
	PageSize int `json:"page_size,omitempty"` //nolint:tagliatelle
}

// DefaultConfig returns CKT's zero-tuning configuration: page cache on,
// package-default buffer sizes.
func DefaultConfig() Config {
	return Config{}
}

// ConfigFileName is the project-local config file name.
const ConfigFileName = ".ckt.hujson"

var (
	errConfigFileNotFound = errors.New("cliapp: config file not found")
	errConfigInvalid      = errors.New("cliapp: invalid config")
)

// globalConfigPath returns $XDG_CONFIG_HOME/ckt/config.hujson, falling
// back to ~/.config/ckt/config.hujson.
func globalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "ckt", "config.hujson")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "ckt", "config.hujson")
}

// LoadConfig merges defaults, the global config, and a project config
// file, in that order of increasing precedence. The project file is
// explicitPath when given (and must then exist), else an optional
// ConfigFileName in workDir.
func LoadConfig(workDir, explicitPath string, env map[string]string) (Config, error) {
	cfg := DefaultConfig()

	if global := globalConfigPath(env); global != "" {
		loaded, ok, err := loadConfigFile(global, false)
		if err != nil {
			return Config{}, err
		}

		if ok {
			cfg = mergeConfig(cfg, loaded)
		}
	}

	projectPath := explicitPath
	mustExist := explicitPath != ""

	if projectPath == "" {
		projectPath = filepath.Join(workDir, ConfigFileName)
	} else if !filepath.IsAbs(projectPath) {
		projectPath = filepath.Join(workDir, projectPath)
	}

	loaded, ok, err := loadConfigFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if ok {
		cfg = mergeConfig(cfg, loaded)
	}

	return cfg, nil
}

func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}

			return Config{}, false, nil
		}

		return Config{}, false, err
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DirectIO {
		base.DirectIO = true
	}

	if overlay.IOBufferSize != 0 {
		base.IOBufferSize = overlay.IOBufferSize
	}

	if overlay.PageSize != 0 {
		base.PageSize = overlay.PageSize
	}

	return base
}
