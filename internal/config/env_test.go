package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvMagick, "/usr/local/bin/magick")
	t.Setenv(EnvXelatex, "")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvOutput, "/srv/cards")

	cfg := Default()
	ApplyEnv(&cfg)

	if cfg.Magick != "/usr/local/bin/magick" {
		t.Errorf("Magick = %q", cfg.Magick)
	}
	if cfg.Xelatex != "xelatex" {
		t.Errorf("empty variable should not override: Xelatex = %q", cfg.Xelatex)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.OutputRoot != "/srv/cards" {
		t.Errorf("OutputRoot = %q", cfg.OutputRoot)
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// No .env is fine.
	if err := LoadDotenv(); err != nil {
		t.Fatalf("LoadDotenv without a file: %v", err)
	}

	os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvXelatex+"=/opt/tex/xelatex\n"+EnvMagick+"=/from/dotenv\n"), 0644)
	t.Setenv(EnvMagick, "/from/env")
	t.Setenv(EnvXelatex, "")
	os.Unsetenv(EnvXelatex)

	if err := LoadDotenv(); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(EnvXelatex); got != "/opt/tex/xelatex" {
		t.Errorf("%s = %q, want value from .env", EnvXelatex, got)
	}
	if got := os.Getenv(EnvMagick); got != "/from/env" {
		t.Errorf("%s = %q, existing variable should win", EnvMagick, got)
	}
}
