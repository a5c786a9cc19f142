package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, k := range []string{
		"EZTRANS_LIBRARY", "EZTRANS_HOME", "EZTRANS_INIT_KEY", "EZTRANS_MODE",
		"EZTRANS_LOG_LEVEL", "EZTRANS_OTEL_ENDPOINT", "EZTRANS_OTEL_ENABLED",
	} {
		t.Setenv(k, vars[k])
		if vars[k] == "" {
			os.Unsetenv(k)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, nil)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.InitKey != DefaultInitKey {
		t.Errorf("InitKey = %q, want %q", cfg.InitKey, DefaultInitKey)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.Mode != 0 {
		t.Errorf("Mode = %d, want 0", cfg.Mode)
	}
	if cfg.TracingEnabled() {
		t.Error("tracing enabled without an endpoint")
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted a missing library path")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	setEnv(t, map[string]string{
		"EZTRANS_LIBRARY":       "/opt/ezTrans/J2KEngine.dll",
		"EZTRANS_INIT_KEY":      "KEY",
		"EZTRANS_MODE":          "2",
		"EZTRANS_LOG_LEVEL":     "debug",
		"EZTRANS_OTEL_ENDPOINT": "http://localhost:4318",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Library != "/opt/ezTrans/J2KEngine.dll" || cfg.InitKey != "KEY" || cfg.Mode != 2 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if lvl, err := cfg.Level(); err != nil || lvl != zapcore.DebugLevel {
		t.Errorf("Level() = %v, %v", lvl, err)
	}
	if !cfg.TracingEnabled() {
		t.Error("tracing disabled with an endpoint set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate(): %v", err)
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	setEnv(t, map[string]string{"EZTRANS_MODE": "fast"})

	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestTracingEnabled_ExplicitlyDisabled(t *testing.T) {
	setEnv(t, map[string]string{
		"EZTRANS_OTEL_ENDPOINT": "http://localhost:4318",
		"EZTRANS_OTEL_ENABLED":  "false",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TracingEnabled() {
		t.Error("tracing enabled although disabled")
	}
}

func TestHomeDir(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit", Config{Library: "/opt/ezTrans/J2KEngine.dll", Home: "/data"}, "/data"},
		{"next to library", Config{Library: "/opt/ezTrans/J2KEngine.dll"}, filepath.Join("/opt/ezTrans", "Dat")},
		{"no library", Config{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HomeDir(); got != tt.want {
				t.Errorf("HomeDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := Config{Library: "J2KEngine.dll", InitKey: DefaultInitKey, LogLevel: "info"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no library", func(c *Config) { c.Library = "" }, true},
		{"no init key", func(c *Config) { c.InitKey = "" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
