package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors Config with pointer fields so we can distinguish
// "not set" from zero values when merging TOML.
type fileConfig struct {
	Engine        *string `toml:"engine"`
	DefaultFont   *string `toml:"default_font"`
	HebrewRTL     *bool   `toml:"hebrew_rtl"`
	OutputRoot    *string `toml:"output_root"`
	Jobs          *int    `toml:"jobs"`
	Magick        *string `toml:"magick"`
	Xelatex       *string `toml:"xelatex"`
	FcList        *string `toml:"fc_list"`
	FcMatch       *string `toml:"fc_match"`
	Cache         *bool   `toml:"cache"`
	CachePath     *string `toml:"cache_path"`
	FontCacheSize *int    `toml:"font_cache_size"`
	LogLevel      *string `toml:"log_level"`
	LogFile       *string `toml:"log_file"`
	Listen        *string `toml:"listen"`
}

// ConfigDir returns the rendercards config directory, respecting
// XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rendercards")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rendercards")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadFile reads config.toml and merges non-nil fields into cfg.
// Returns true if the file existed, false otherwise.
func LoadFile(cfg *Config) (bool, error) {
	data, err := os.ReadFile(ConfigPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return true, err
	}

	setString(&cfg.Engine, fc.Engine)
	setString(&cfg.DefaultFont, fc.DefaultFont)
	setString(&cfg.Magick, fc.Magick)
	setString(&cfg.Xelatex, fc.Xelatex)
	setString(&cfg.FcList, fc.FcList)
	setString(&cfg.FcMatch, fc.FcMatch)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.Listen, fc.Listen)
	if fc.OutputRoot != nil {
		cfg.OutputRoot = ExpandHome(*fc.OutputRoot)
	}
	if fc.CachePath != nil {
		cfg.CachePath = ExpandHome(*fc.CachePath)
	}
	if fc.LogFile != nil {
		cfg.LogFile = ExpandHome(*fc.LogFile)
	}
	if fc.HebrewRTL != nil {
		cfg.HebrewRTL = *fc.HebrewRTL
	}
	if fc.Cache != nil {
		cfg.Cache = *fc.Cache
	}
	if fc.Jobs != nil {
		cfg.Jobs = *fc.Jobs
	}
	if fc.FontCacheSize != nil {
		cfg.FontCacheSize = *fc.FontCacheSize
	}

	return true, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// SaveFile writes the user-facing choices of cfg to config.toml.
func SaveFile(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	fc := fileConfig{
		Engine:      &cfg.Engine,
		DefaultFont: &cfg.DefaultFont,
		HebrewRTL:   &cfg.HebrewRTL,
		Jobs:        &cfg.Jobs,
	}
	if cfg.OutputRoot != "" {
		display := collapseHome(cfg.OutputRoot)
		fc.OutputRoot = &display
	}

	f, err := os.Create(ConfigPath())
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(fc)
}

// collapseHome stores paths under the home directory with ~ for readability.
func collapseHome(path string) string {
	home, _ := os.UserHomeDir()
	if home != "" && strings.HasPrefix(path, home+string(os.PathSeparator)) {
		return "~" + path[len(home):]
	}
	return path
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, _ := os.UserHomeDir()
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
