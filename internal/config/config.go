package config

import (
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	Engine        string
	DefaultFont   string
	HebrewRTL     bool
	OutputRoot    string // empty: the deck file's directory
	Jobs          int
	Magick        string
	Xelatex       string
	FcList        string
	FcMatch       string
	Cache         bool
	CachePath     string
	FontCacheSize int
	LogLevel      string
	LogFile       string
	Listen        string
}

func Default() Config {
	jobs := runtime.NumCPU()
	if jobs > 4 {
		jobs = 4
	}
	return Config{
		DefaultFont:   "Arial",
		Jobs:          jobs,
		Magick:        "magick",
		Xelatex:       "xelatex",
		FcList:        "fc-list",
		FcMatch:       "fc-match",
		Cache:         true,
		CachePath:     filepath.Join(CacheDir(), "cache.db"),
		FontCacheSize: 256,
		LogLevel:      "info",
		Listen:        ":2323",
	}
}

// CacheDir returns the rendercards cache directory, respecting
// XDG_CACHE_HOME.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "rendercards")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "rendercards")
}
