package config

import (
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		set      bool
		def      string
		expected string
	}{
		{
			name:     "variable set",
			key:      "TEST_GETENV",
			value:    "custom",
			set:      true,
			def:      "fallback",
			expected: "custom",
		},
		{
			name:     "variable missing",
			key:      "TEST_GETENV_MISSING",
			def:      "fallback",
			expected: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv(tt.key, tt.value)
			}
			if got := getenv(tt.key, tt.def); got != tt.expected {
				t.Errorf("getenv() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		expected int
	}{
		{name: "valid integer", value: "42", set: true, expected: 42},
		{name: "invalid integer", value: "not_a_number", set: true, expected: 7},
		{name: "missing", expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_GETENV_INT", tt.value)
			}
			if got := getenvInt("TEST_GETENV_INT", 7); got != tt.expected {
				t.Errorf("getenvInt() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		def      bool
		expected bool
	}{
		{name: "true value", value: "true", set: true, def: false, expected: true},
		{name: "false value", value: "false", set: true, def: true, expected: false},
		{name: "garbage keeps default", value: "maybe", set: true, def: true, expected: true},
		{name: "missing keeps default", def: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_MUST_BOOL", tt.value)
			}
			if got := mustBool("TEST_MUST_BOOL", tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		expected time.Duration
	}{
		{name: "valid duration", value: "30s", set: true, expected: 30 * time.Second},
		{name: "invalid duration keeps default", value: "soon", set: true, expected: 5 * time.Second},
		{name: "missing keeps default", expected: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_MUST_DURATION", tt.value)
			}
			if got := mustDuration("TEST_MUST_DURATION", 5*time.Second); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.SeedFile != "seed.yaml" {
		t.Errorf("SeedFile = %q, want seed.yaml", cfg.SeedFile)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty (in-process store)", cfg.RedisAddr)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
}
