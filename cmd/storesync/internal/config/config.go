// Package config loads the optional storesync.yaml and resolves defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/storesync/pkg/selector"
)

// FileName is the configuration file looked up in the project root.
const FileName = "storesync.yaml"

// Config represents the optional storesync.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Checks ChecksConfig `yaml:"checks"`
	// Development toggles argument validation and the selector checks.
	// Defaults to true.
	Development *bool       `yaml:"development,omitempty"`
	Trace       TraceConfig `yaml:"trace"`
}

// AppConfig contains project metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// ChecksConfig sets the provider-level development checks.
type ChecksConfig struct {
	Stability        *selector.CheckMode `yaml:"stability,omitempty"`
	IdentityFunction *selector.CheckMode `yaml:"identityFunction,omitempty"`
}

// TraceConfig controls instrumentation of scenario runs.
type TraceConfig struct {
	// Enabled records instrumentation events. Defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`
	// Verbose also logs every event at debug level.
	Verbose bool `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root         string
	ModulePath   string
	AppName      string
	Checks       selector.DevModeChecks
	Development  bool
	TraceEnabled bool
	TraceVerbose bool
}

// LoadOptional reads the config file at path if present.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return &cfg, nil
}

// Resolve loads the configuration and resolves defaults. dir is the
// project root; path overrides the config file location when non-empty.
// A project without go.mod resolves with an empty module path.
func Resolve(dir, path string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if path == "" {
		path = filepath.Join(dir, FileName)
	}
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	var checks selector.DevModeChecks
	if cfg.Checks.Stability != nil {
		checks.StabilityCheck = *cfg.Checks.Stability
	}
	if cfg.Checks.IdentityFunction != nil {
		checks.IdentityFunctionCheck = *cfg.Checks.IdentityFunction
	}

	return &Resolved{
		Root:         dir,
		ModulePath:   modulePath,
		AppName:      appName,
		Checks:       checks,
		Development:  boolOr(cfg.Development, true),
		TraceEnabled: boolOr(cfg.Trace.Enabled, true),
		TraceVerbose: cfg.Trace.Verbose,
	}, nil
}

// FindProjectRoot walks up from dir to find go.mod. It returns dir itself
// when no enclosing module exists.
func FindProjectRoot(dir string) string {
	for current := dir; ; {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "storesync"
	}
	return base
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
