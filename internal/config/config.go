// Package config loads pdcheck settings from defaults, an optional YAML file
// and PDCHECK_* environment variables. Command flags are applied on top by the
// caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/pdcheck/internal/logging"
	"github.com/lehigh-university-libraries/pdcheck/internal/renewal"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "PDCHECK_CONFIG"

// Config is the full runtime configuration.
type Config struct {
	RegistrationDir string `yaml:"registration_dir"`
	RenewalDir      string `yaml:"renewal_dir"`
	RenewalEncoding string `yaml:"renewal_encoding"`
	AllowFullScan   bool   `yaml:"allow_full_scan"`
	Concurrency     int    `yaml:"concurrency"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	Addr            string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RegistrationDir: "./copyright_entries/xml",
		RenewalDir:      "./cce_renewals/data",
		RenewalEncoding: "utf-8",
		Concurrency:     4,
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":8888",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and the process environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"PDCHECK_REGISTRATION_DIR": &c.RegistrationDir,
		"PDCHECK_RENEWAL_DIR":      &c.RenewalDir,
		"PDCHECK_RENEWAL_ENCODING": &c.RenewalEncoding,
		"PDCHECK_LOG_LEVEL":        &c.LogLevel,
		"PDCHECK_LOG_FORMAT":       &c.LogFormat,
		"PDCHECK_ADDR":             &c.Addr,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	if v := strings.TrimSpace(getenv("PDCHECK_ALLOW_FULL_SCAN")); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PDCHECK_ALLOW_FULL_SCAN %q: %w", v, err)
		}
		c.AllowFullScan = allow
	}
	if v := strings.TrimSpace(getenv("PDCHECK_CONCURRENCY")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PDCHECK_CONCURRENCY %q: %w", v, err)
		}
		c.Concurrency = n
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.RegistrationDir) == "" {
		errs = append(errs, errors.New("registration_dir is required"))
	}
	if strings.TrimSpace(c.RenewalDir) == "" {
		errs = append(errs, errors.New("renewal_dir is required"))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if err := renewal.ValidateEncoding(c.RenewalEncoding); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Corpora opens the registration and renewal directories.
func (c Config) Corpora() (registrations, renewals fs.FS, err error) {
	for _, dir := range []string{c.RegistrationDir, c.RenewalDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("corpus directory not found: %w", err)
		}
		if !info.IsDir() {
			return nil, nil, fmt.Errorf("corpus path %s is not a directory", dir)
		}
	}
	return os.DirFS(c.RegistrationDir), os.DirFS(c.RenewalDir), nil
}
