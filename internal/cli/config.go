package cli

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// Config - Layered CLI Configuration
// =============================================================================

// Config holds CLI configuration shared by all commands.
// Priority: flags > SKETCHPORT_* env vars > sketchport.toml > defaults.
type Config struct {
	Capture CaptureConfig `toml:"capture"`
	Cache   CacheConfig   `toml:"cache"`
	Serve   ServeConfig   `toml:"serve"`
}

// CaptureConfig controls how PNG captures run.
type CaptureConfig struct {
	SettleMs      int     `toml:"settle_ms"`      // pause before the surface is captured
	TimeoutMs     int     `toml:"timeout_ms"`     // bound on the render-completion wait
	ViewportWidth int     `toml:"viewport_width"` // browser viewport width
	Scale         float64 `toml:"scale"`          // device scale factor
	BrowserPath   string  `toml:"browser_path"`   // explicit Chrome/Chromium binary
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // "file" (default), "redis", or "none"
	Dir       string `toml:"dir"`     // file backend directory, empty for XDG default
	RedisAddr string `toml:"redis_addr"`
}

// ServeConfig controls serve mode.
type ServeConfig struct {
	Addr     string `toml:"addr"`
	Store    string `toml:"store"` // "memory" (default), "file", or "mongo"
	MongoURI string `toml:"mongo_uri"`
}

// Cache backend names accepted by [cache] backend.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Job store names accepted by [serve] store.
const (
	jobStoreMemory = "memory"
	jobStoreFile   = "file"
	jobStoreMongo  = "mongo"
)

// configFileName is looked up in the working directory first, then in
// ~/.config/sketchport/.
const configFileName = "sketchport.toml"

func defaultConfig() Config {
	return Config{
		Capture: CaptureConfig{
			SettleMs:      0, // 0 selects the pipeline default
			TimeoutMs:     0,
			ViewportWidth: 0,
			Scale:         0,
		},
		Cache: CacheConfig{
			Backend: cacheBackendFile,
		},
		Serve: ServeConfig{
			Addr:  ":8311",
			Store: jobStoreMemory,
		},
	}
}

// configDir returns the config directory (~/.config/sketchport/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// configPath returns the first existing config file, or "" if none exists.
func configPath() string {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// loadConfig builds the effective configuration from defaults, the config
// file, and environment variables, in that order. A malformed config file
// is ignored rather than fatal; commands still run with defaults.
func loadConfig() Config {
	cfg := defaultConfig()

	if path := configPath(); path != "" {
		_, _ = toml.DecodeFile(path, &cfg)
	}

	applyEnv(&cfg)
	return cfg
}

// applyEnv overrides config fields from SKETCHPORT_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SKETCHPORT_SETTLE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capture.SettleMs = n
		}
	}
	if v := os.Getenv("SKETCHPORT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capture.TimeoutMs = n
		}
	}
	if v := os.Getenv("SKETCHPORT_VIEWPORT_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capture.ViewportWidth = n
		}
	}
	if v := os.Getenv("SKETCHPORT_SCALE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Capture.Scale = f
		}
	}
	if v := os.Getenv("SKETCHPORT_BROWSER_PATH"); v != "" {
		cfg.Capture.BrowserPath = v
	}
	if v := os.Getenv("SKETCHPORT_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SKETCHPORT_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("SKETCHPORT_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SKETCHPORT_SERVE_ADDR"); v != "" {
		cfg.Serve.Addr = v
	}
	if v := os.Getenv("SKETCHPORT_JOB_STORE"); v != "" {
		cfg.Serve.Store = v
	}
	if v := os.Getenv("SKETCHPORT_MONGO_URI"); v != "" {
		cfg.Serve.MongoURI = v
	}
}
