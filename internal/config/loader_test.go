package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	def := Default()
	if cfg.Addr != def.Addr || cfg.Redis.Channel != "push" || cfg.ShutdownTimeout != def.ShutdownTimeout {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")

	content := []byte("addr: \":9000\"\nshutdown_timeout: 2s\nredis:\n  addr: \"redis:6379\"\n  channel: \"from-file\"\ncatalog:\n  api_key: \"file-key\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PUSHRELAY_REDIS_CHANNEL", "from-env")

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q, want :9000", cfg.Addr)
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Errorf("shutdown_timeout = %v, want 2s", cfg.ShutdownTimeout)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis.addr = %q", cfg.Redis.Addr)
	}
	if cfg.Redis.Channel != "from-env" {
		t.Errorf("redis.channel = %q, env should win over file", cfg.Redis.Channel)
	}
	if cfg.Catalog.APIKey != "file-key" {
		t.Errorf("catalog.api_key = %q", cfg.Catalog.APIKey)
	}
	if cfg.Catalog.PageSize != Default().Catalog.PageSize {
		t.Errorf("catalog.page_size = %d, want default", cfg.Catalog.PageSize)
	}
}

func TestUpdateFromKeepsZeroFields(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{
		Addr:    ":7000",
		Redis:   RedisConfig{Channel: "other"},
		Catalog: CatalogConfig{APIKey: "k", Concurrency: 4},
	})

	if cfg.Addr != ":7000" || cfg.Redis.Channel != "other" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Redis.Addr != Default().Redis.Addr {
		t.Fatalf("redis addr overwritten by zero value: %q", cfg.Redis.Addr)
	}
	if cfg.Catalog.APIKey != "k" || cfg.Catalog.Concurrency != 4 || cfg.Catalog.BaseURL == "" {
		t.Fatalf("catalog overrides wrong: %+v", cfg.Catalog)
	}
}

func TestLoadReadOnlyDoesNotWriteConfig(t *testing.T) {
	logger := zerolog.Nop()
	dir := t.TempDir()
	t.Setenv("PUSHRELAY_CONFIG_DEFAULT_PATH", dir)
	t.Setenv("PUSHRELAY_CATALOG_API_KEY", "env-key")

	cfg, resolved, err := LoadReadOnly(&logger, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != filepath.Join(dir, "config.yaml") {
		t.Fatalf("resolved path = %q", resolved)
	}
	if _, err := os.Stat(resolved); !os.IsNotExist(err) {
		t.Fatalf("config file should not exist, stat err = %v", err)
	}
	if cfg.Catalog.APIKey != "env-key" {
		t.Fatalf("catalog.api_key = %q, want env value", cfg.Catalog.APIKey)
	}
	if cfg.Catalog.BaseURL != Default().Catalog.BaseURL {
		t.Fatalf("catalog.base_url = %q, want default", cfg.Catalog.BaseURL)
	}
}

func TestLoadReadOnlyMissingExplicitPath(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "missing.yaml")

	if _, _, err := LoadReadOnly(&logger, path); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("config file should not be created, stat err = %v", err)
	}
}

func TestRedisPingIntervalFromEnv(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("PUSHRELAY_REDIS_PING_INTERVAL", "250ms")

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.PingInterval != 250*time.Millisecond {
		t.Fatalf("redis.ping_interval = %v, want 250ms", cfg.Redis.PingInterval)
	}
}
