package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("WATCH_DIRS", "./src, ./docs ,")
	t.Setenv("BRAIN_DIR", "notes")
	t.Setenv("BRIDGE_FILE", "/tmp/bridge.ndjson")
	t.Setenv("AGENT_TTL_MS", "5000")
	t.Setenv("DEBOUNCE_MS", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "4000" {
		t.Errorf("Port = %q, want 4000", cfg.Port)
	}
	if len(cfg.WatchDirs) != 2 || cfg.WatchDirs[0] != "./src" || cfg.WatchDirs[1] != "./docs" {
		t.Errorf("WatchDirs = %v", cfg.WatchDirs)
	}
	if cfg.BrainDir != "notes" || cfg.BridgeFile != "/tmp/bridge.ndjson" {
		t.Errorf("unexpected dirs: %+v", cfg)
	}
	if cfg.AgentTTL != 5*time.Second {
		t.Errorf("AgentTTL = %v, want 5s", cfg.AgentTTL)
	}
	if cfg.DebounceWindow != 250*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 250ms", cfg.DebounceWindow)
	}
	if !cfg.WatcherEnabled() {
		t.Error("expected watcher enabled with WATCH_DIRS set")
	}
}

func TestLoadIgnoresUnparseableInts(t *testing.T) {
	t.Setenv("AGENT_TTL_MS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AgentTTL != 15*time.Second {
		t.Errorf("AgentTTL = %v, want default 15s", cfg.AgentTTL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty port", Config{Port: "", AgentTTL: time.Second, DebounceWindow: time.Second}},
		{"zero ttl", Config{Port: "3777", AgentTTL: 0, DebounceWindow: time.Second}},
		{"zero debounce", Config{Port: "3777", AgentTTL: time.Second, DebounceWindow: 0}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
