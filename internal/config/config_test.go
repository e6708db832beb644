package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	def := Default()
	if cfg.Port != def.Port || cfg.ChatChannel != "default" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.MismatchDelay() != time.Second || cfg.MatchDelay() != 500*time.Millisecond {
		t.Fatalf("unexpected memory delays %v %v", cfg.MismatchDelay(), cfg.MatchDelay())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CHAT_URL", "ws://chat.example/socket/")
	t.Setenv("CHAT_KEY", "abc")
	t.Setenv("MEMORY_MISMATCH_MS", "250")
	t.Setenv("DB_MAX_OPEN_CONNS", "-3")
	cfg := Load()
	if cfg.Port != "9000" || cfg.ChatURL != "ws://chat.example/socket/" || cfg.ChatKey != "abc" {
		t.Fatalf("environment not applied: %+v", cfg)
	}
	if cfg.MemoryMismatchMillis != 250 {
		t.Fatalf("expected 250ms mismatch delay, got %d", cfg.MemoryMismatchMillis)
	}
	if cfg.DBMaxOpenConns != Default().DBMaxOpenConns {
		t.Fatalf("expected invalid value to fall back, got %d", cfg.DBMaxOpenConns)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CHAT_KEY=fromfile\nCHAT_CHANNEL=lobby\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CHAT_KEY", "fromenv")
	t.Setenv("CHAT_CHANNEL", "")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("CHAT_KEY"); got != "fromenv" {
		t.Fatalf("expected existing value kept, got %q", got)
	}
}
