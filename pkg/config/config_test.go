package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, DefaultPollInterval)
	}
	if !cfg.Reraise {
		t.Error("Reraise default must be true")
	}
	if !cfg.Cache {
		t.Error("Cache default must be true")
	}
}

func TestEffectiveTimeout(t *testing.T) {
	cfg := &Config{Timeout: 30 * time.Second}
	elem := 10 * time.Second
	call := 5 * time.Second

	if got := cfg.EffectiveTimeout(nil, nil); got != 30*time.Second {
		t.Errorf("process level = %v, want 30s", got)
	}
	if got := cfg.EffectiveTimeout(nil, &elem); got != 10*time.Second {
		t.Errorf("element level = %v, want 10s", got)
	}
	if got := cfg.EffectiveTimeout(&call, &elem); got != 5*time.Second {
		t.Errorf("call level = %v, want 5s", got)
	}
}

func TestEffectiveReraise(t *testing.T) {
	cfg := &Config{Reraise: true}
	f, tr := false, true

	if !cfg.EffectiveReraise(nil, nil) {
		t.Error("process default must win when both overrides are nil")
	}
	if cfg.EffectiveReraise(nil, &f) {
		t.Error("explicit element false must override process true")
	}
	if !cfg.EffectiveReraise(&tr, &f) {
		t.Error("explicit call true must override element false")
	}
}

func TestEffectiveCache(t *testing.T) {
	cfg := &Config{Cache: true}
	f := false
	if cfg.EffectiveCache(&f) {
		t.Error("element false must override process true")
	}
	if !cfg.EffectiveCache(nil) {
		t.Error("nil element override must defer to process default")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagekit.yaml")
	content := `timeout: 12s
pollInterval: 250ms
reraise: false
cache: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 12*time.Second {
		t.Errorf("Timeout = %v, want 12s", cfg.Timeout)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", cfg.PollInterval)
	}
	if cfg.Reraise {
		t.Error("Reraise = true, want false")
	}
	if cfg.Cache {
		t.Error("Cache = true, want false")
	}
}

func TestLoadPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagekit.yaml")
	if err := os.WriteFile(path, []byte("timeout: 7s\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v, want 7s", cfg.Timeout)
	}
	// Unset fields keep their defaults.
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want default", cfg.PollInterval)
	}
	if !cfg.Reraise || !cfg.Cache {
		t.Error("unset booleans must keep their true defaults")
	}
}

func TestLoadBadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagekit.yaml")
	if err := os.WriteFile(path, []byte("timeout: banana\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pagekit.yml"), []byte("timeout: 3s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Timeout)
	}
}

func TestLoadFromDirMissing(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want default", cfg.Timeout)
	}
}
