package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Cache.Backend != cacheBackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, cacheBackendFile)
	}
	if cfg.Serve.Addr != ":8311" {
		t.Errorf("Serve.Addr = %q, want :8311", cfg.Serve.Addr)
	}
	if cfg.Serve.Store != jobStoreMemory {
		t.Errorf("Serve.Store = %q, want %q", cfg.Serve.Store, jobStoreMemory)
	}

	// Zero capture values select the pipeline defaults.
	if cfg.Capture.SettleMs != 0 || cfg.Capture.Scale != 0 {
		t.Errorf("capture defaults should be zero, got %+v", cfg.Capture)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[capture]
settle_ms = 250
scale = 3.0
browser_path = "/usr/bin/chromium"

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[serve]
addr = ":9000"
store = "file"
`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "unused"))

	cfg := loadConfig()

	if cfg.Capture.SettleMs != 250 {
		t.Errorf("Capture.SettleMs = %d, want 250", cfg.Capture.SettleMs)
	}
	if cfg.Capture.Scale != 3.0 {
		t.Errorf("Capture.Scale = %v, want 3.0", cfg.Capture.Scale)
	}
	if cfg.Capture.BrowserPath != "/usr/bin/chromium" {
		t.Errorf("Capture.BrowserPath = %q", cfg.Capture.BrowserPath)
	}
	if cfg.Cache.Backend != cacheBackendRedis {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache.RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Serve.Addr != ":9000" {
		t.Errorf("Serve.Addr = %q, want :9000", cfg.Serve.Addr)
	}
	if cfg.Serve.Store != jobStoreFile {
		t.Errorf("Serve.Store = %q, want file", cfg.Serve.Store)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[serve]
addr = ":9999"
`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "unused"))

	cfg := loadConfig()

	if cfg.Serve.Addr != ":9999" {
		t.Errorf("Serve.Addr = %q, want :9999", cfg.Serve.Addr)
	}
	if cfg.Cache.Backend != cacheBackendFile {
		t.Errorf("unset sections should keep defaults, Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Serve.Store != jobStoreMemory {
		t.Errorf("unset keys should keep defaults, Serve.Store = %q", cfg.Serve.Store)
	}
}

func TestLoadConfigMalformedFileIgnored(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("not [valid} toml ="), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "unused"))

	cfg := loadConfig()

	// Commands still run with defaults.
	if cfg.Serve.Addr != ":8311" {
		t.Errorf("Serve.Addr = %q, want default :8311", cfg.Serve.Addr)
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[capture]
settle_ms = 250

[cache]
backend = "file"
`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "unused"))
	t.Setenv("SKETCHPORT_SETTLE_MS", "750")
	t.Setenv("SKETCHPORT_CACHE_BACKEND", "none")
	t.Setenv("SKETCHPORT_SERVE_ADDR", ":7000")

	cfg := loadConfig()

	if cfg.Capture.SettleMs != 750 {
		t.Errorf("env should win over file: SettleMs = %d, want 750", cfg.Capture.SettleMs)
	}
	if cfg.Cache.Backend != cacheBackendNone {
		t.Errorf("env should win over file: Cache.Backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.Serve.Addr != ":7000" {
		t.Errorf("Serve.Addr = %q, want :7000", cfg.Serve.Addr)
	}
}

func TestApplyEnvIgnoresUnparsable(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("SKETCHPORT_SETTLE_MS", "soon")
	t.Setenv("SKETCHPORT_SCALE", "big")

	applyEnv(&cfg)

	if cfg.Capture.SettleMs != 0 {
		t.Errorf("unparsable SETTLE_MS should be ignored, got %d", cfg.Capture.SettleMs)
	}
	if cfg.Capture.Scale != 0 {
		t.Errorf("unparsable SCALE should be ignored, got %v", cfg.Capture.Scale)
	}
}

func TestConfigPathPrefersWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	if got := configPath(); got != configFileName {
		t.Errorf("configPath() = %q, want %q", got, configFileName)
	}
}

func TestConfigPathXDG(t *testing.T) {
	home := t.TempDir()
	cfgDir := filepath.Join(home, appName)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfgDir, configFileName)
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(t.TempDir()) // no sketchport.toml here
	t.Setenv("XDG_CONFIG_HOME", home)

	if got := configPath(); got != path {
		t.Errorf("configPath() = %q, want %q", got, path)
	}
}
