package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/config"
)

func newTestCmd() *cobra.Command {
	root := &cobra.Command{Use: "pdcheck"}
	AddFlags(root)
	child := &cobra.Command{Use: "batch", Run: func(*cobra.Command, []string) {}}
	child.Flags().Int("concurrency", 4, "")
	root.AddCommand(child)
	return root
}

func corpusDirs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	reg := filepath.Join(dir, "xml")
	ren := filepath.Join(dir, "tsv")
	for _, d := range []string{reg, ren} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	return reg, ren
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	reg, ren := corpusDirs(t)
	t.Setenv("PDCHECK_CONCURRENCY", "2")
	t.Setenv("PDCHECK_LOG_LEVEL", "warn")

	root := newTestCmd()
	root.SetArgs([]string{"batch", "--registration-dir", reg, "--renewal-dir", ren, "--concurrency", "9", "--allow-full-scan"})

	var cfg config.Config
	var loadErr error
	root.Commands()[0].Run = func(cmd *cobra.Command, args []string) {
		cfg, loadErr = LoadConfig(cmd)
	}
	if err := root.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loadErr != nil {
		t.Fatalf("Unexpected config error: %v", loadErr)
	}

	if cfg.RegistrationDir != reg || cfg.RenewalDir != ren {
		t.Errorf("Expected flag directories, got %s and %s", cfg.RegistrationDir, cfg.RenewalDir)
	}
	if cfg.Concurrency != 9 {
		t.Errorf("Expected flag concurrency 9 to beat env, got %d", cfg.Concurrency)
	}
	if !cfg.AllowFullScan {
		t.Errorf("Expected full scan to be allowed")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected env log level warn, got %s", cfg.LogLevel)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	root := newTestCmd()
	root.SetArgs([]string{"batch", "--concurrency", "0"})

	var loadErr error
	root.Commands()[0].Run = func(cmd *cobra.Command, args []string) {
		_, loadErr = LoadConfig(cmd)
	}
	if err := root.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loadErr == nil {
		t.Errorf("Expected invalid concurrency to be rejected")
	}
}

func TestNew(t *testing.T) {
	reg, ren := corpusDirs(t)
	cfg := config.Default()
	cfg.RegistrationDir = reg
	cfg.RenewalDir = ren

	var stderr bytes.Buffer
	a, err := New(cfg, &stderr)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a.Engine == nil || a.Registrations == nil || a.Renewals == nil {
		t.Errorf("Expected a complete app, got %+v", a)
	}
	if a.Engine.AllowsFullScan() {
		t.Errorf("Expected full scan to follow config default")
	}

	cfg.RegistrationDir = filepath.Join(reg, "missing")
	if _, err := New(cfg, &stderr); err == nil {
		t.Errorf("Expected error for missing corpus")
	}
}
