package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvMagick   = "RENDERCARDS_MAGICK"
	EnvXelatex  = "RENDERCARDS_XELATEX"
	EnvLogLevel = "RENDERCARDS_LOG_LEVEL"
	EnvOutput   = "RENDERCARDS_OUTPUT"
)

// LoadDotenv loads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadDotenv() error {
	err := godotenv.Load()
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// ApplyEnv merges environment overrides into cfg.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvMagick); v != "" {
		cfg.Magick = v
	}
	if v := os.Getenv(EnvXelatex); v != "" {
		cfg.Xelatex = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.OutputRoot = ExpandHome(v)
	}
}
