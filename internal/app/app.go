// Package app assembles configuration, logging and the status engine for the
// pdcheck commands.
package app

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/config"
	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
	"github.com/lehigh-university-libraries/pdcheck/internal/logging"
	"github.com/lehigh-university-libraries/pdcheck/internal/progress"
)

// App is everything a command needs to answer queries.
type App struct {
	Config        config.Config
	Logger        *slog.Logger
	Engine        *copyright.Engine
	Registrations fs.FS
	Renewals      fs.FS
}

// AddFlags registers the global flags on root.
func AddFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file (env PDCHECK_CONFIG)")
	flags.String("registration-dir", "", "Registration corpus directory (env PDCHECK_REGISTRATION_DIR)")
	flags.String("renewal-dir", "", "Renewal corpus directory (env PDCHECK_RENEWAL_DIR)")
	flags.String("renewal-encoding", "", "Encoding of renewal files (env PDCHECK_RENEWAL_ENCODING)")
	flags.Bool("allow-full-scan", false, "Allow queries without a year to scan every registration file")
	flags.String("log-level", "", "Log level: debug, info, warn, error (env PDCHECK_LOG_LEVEL)")
	flags.String("log-format", "", "Log format: text or json (env PDCHECK_LOG_FORMAT)")
}

// LoadConfig resolves the configuration for cmd: defaults, YAML, environment,
// then any flags set on the command line.
func LoadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	overrideString(cmd, "registration-dir", &cfg.RegistrationDir)
	overrideString(cmd, "renewal-dir", &cfg.RenewalDir)
	overrideString(cmd, "renewal-encoding", &cfg.RenewalEncoding)
	overrideString(cmd, "log-level", &cfg.LogLevel)
	overrideString(cmd, "log-format", &cfg.LogFormat)
	overrideString(cmd, "addr", &cfg.Addr)
	if changed(cmd, "allow-full-scan") {
		cfg.AllowFullScan, _ = cmd.Flags().GetBool("allow-full-scan")
	}
	if changed(cmd, "concurrency") {
		cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Load builds an App for cmd. Logs and scan progress go to stderr.
func Load(cmd *cobra.Command) (*App, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return New(cfg, cmd.ErrOrStderr())
}

// New builds an App from a validated config.
func New(cfg config.Config, stderr io.Writer) (*App, error) {
	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		return nil, err
	}

	registrations, renewals, err := cfg.Corpora()
	if err != nil {
		return nil, err
	}

	engine, err := copyright.New(copyright.Config{
		Registrations:   registrations,
		Renewals:        renewals,
		RenewalEncoding: cfg.RenewalEncoding,
		Logger:          logger,
		Progress:        progress.NewScan(stderr).Func(),
		AllowFullScan:   cfg.AllowFullScan,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Engine ready",
		"registration_dir", cfg.RegistrationDir,
		"renewal_dir", cfg.RenewalDir,
		"allow_full_scan", cfg.AllowFullScan)

	return &App{
		Config:        cfg,
		Logger:        logger,
		Engine:        engine,
		Registrations: registrations,
		Renewals:      renewals,
	}, nil
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if changed(cmd, name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}
