package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding file values.
const (
	EnvSubmitTimeout = "KCONSOLE_SUBMIT_TIMEOUT"
	EnvWaitTimeout   = "KCONSOLE_WAIT_TIMEOUT"
	EnvNamespace     = "KCONSOLE_NAMESPACE"
	EnvDebug         = "KCONSOLE_DEBUG"
)

// DefaultPath returns $HOME/.kconsole.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Load reads the configuration at path over the defaults. An empty path
// reads DefaultPath and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	// #nosec G304
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.SubmitTimeout = parseDuration(EnvSubmitTimeout, c.SubmitTimeout)
	c.WaitTimeout = parseDuration(EnvWaitTimeout, c.WaitTimeout)
	if ns := os.Getenv(EnvNamespace); ns != "" {
		c.Namespace = ns
	}
	if b, err := strconv.ParseBool(os.Getenv(EnvDebug)); err == nil {
		c.Debug = b
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
