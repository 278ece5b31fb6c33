package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != DefaultHost {
		t.Errorf("expected host %s, got %s", DefaultHost, cfg.Host)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.TemplatePath != DefaultTemplatePath {
		t.Errorf("expected template path %s, got %s", DefaultTemplatePath, cfg.TemplatePath)
	}
	if len(cfg.DefaultPages) == 0 {
		t.Error("expected non-empty default pages")
	}
	if cfg.APIKey != "" {
		t.Error("API key should be disabled by default")
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("expected max file size %d, got %d", DefaultMaxFileSize, cfg.MaxFileSize)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration should be valid: %v", err)
	}
}

func TestDefaultConfig_PagesAreACopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultPages[0] = 99

	if DefaultPages[0] == 99 {
		t.Error("mutating a config must not change the package-level defaults")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid default",
			modify: func(c *Config) {},
		},
		{
			name:        "port too low",
			modify:      func(c *Config) { c.Port = 0 },
			expectError: true,
			errorMsg:    "port must be between",
		},
		{
			name:        "port too high",
			modify:      func(c *Config) { c.Port = 70000 },
			expectError: true,
			errorMsg:    "port must be between",
		},
		{
			name:        "empty template path",
			modify:      func(c *Config) { c.TemplatePath = "" },
			expectError: true,
			errorMsg:    "template path",
		},
		{
			name:        "empty default pages",
			modify:      func(c *Config) { c.DefaultPages = nil },
			expectError: true,
			errorMsg:    "default pages",
		},
		{
			name:        "zero page number",
			modify:      func(c *Config) { c.DefaultPages = []int{1, 0} },
			expectError: true,
			errorMsg:    "pages are 1-based",
		},
		{
			name:        "negative max file size",
			modify:      func(c *Config) { c.MaxFileSize = -1 },
			expectError: true,
			errorMsg:    "file size must be positive",
		},
		{
			name:        "invalid log level",
			modify:      func(c *Config) { c.LogLevel = "verbose" },
			expectError: true,
			errorMsg:    "invalid log level",
		},
		{
			name:        "invalid log format",
			modify:      func(c *Config) { c.LogFormat = "xml" },
			expectError: true,
			errorMsg:    "invalid log format",
		},
		{
			name:   "json log format",
			modify: func(c *Config) { c.LogFormat = "json" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 9000

	if got := cfg.Address(); got != "127.0.0.1:9000" {
		t.Errorf("expected 127.0.0.1:9000, got %s", got)
	}
}

func TestConfig_IsDebug(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsDebug() {
		t.Error("default config should not be in debug mode")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("expected debug mode")
	}
}

func TestConfig_RequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequiresAPIKey() {
		t.Error("empty API key should disable the check")
	}

	cfg.APIKey = "s3cret"
	if !cfg.RequiresAPIKey() {
		t.Error("expected API key check to be enabled")
	}
}

func TestConfig_StringOmitsAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "super-secret-value"

	if strings.Contains(cfg.String(), "super-secret-value") {
		t.Error("String() must not leak the API key")
	}
}
