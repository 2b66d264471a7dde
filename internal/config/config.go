// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port string

	// WatchDirs are directories the filesystem producer observes.
	// Empty means the watcher is disabled.
	WatchDirs []string
	// BrainDir marks the planning/notes directory; files under it
	// classify as architect activity.
	BrainDir string
	// BridgeFile is an append-only NDJSON file ingested as chat
	// messages. Empty disables bridge ingestion.
	BridgeFile string

	// AgentTTL is the inactivity window before an agent expires.
	AgentTTL time.Duration
	// DebounceWindow coalesces repeated file events for the same
	// derived agent.
	DebounceWindow time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3777"),
		WatchDirs:      splitList(getEnv("WATCH_DIRS", "")),
		BrainDir:       getEnv("BRAIN_DIR", "brain"),
		BridgeFile:     getEnv("BRIDGE_FILE", ""),
		AgentTTL:       time.Duration(getEnvInt("AGENT_TTL_MS", 15000)) * time.Millisecond,
		DebounceWindow: time.Duration(getEnvInt("DEBOUNCE_MS", 400)) * time.Millisecond,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.AgentTTL <= 0 {
		return fmt.Errorf("AGENT_TTL_MS must be > 0")
	}
	if c.DebounceWindow <= 0 {
		return fmt.Errorf("DEBOUNCE_MS must be > 0")
	}
	return nil
}

// WatcherEnabled returns true if the filesystem producer should run.
func (c *Config) WatcherEnabled() bool {
	return len(c.WatchDirs) > 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
