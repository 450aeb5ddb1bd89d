// ABOUTME: Tests for .env and environment configuration loading
// ABOUTME: Verifies defaults, precedence and validation errors
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
)

var keys = []string{"AAL_MODULE", "AAL_DEVICE", "AAL_LOG_LEVEL", "AAL_LOG_FILE", "AAL_VOLUME"}

// clearEnv unsets every key for the test; Setenv restores the old values
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := writeEnv(t, "AAL_MODULE=pcm\nAAL_DEVICE=null\nAAL_LOG_LEVEL=warn\nAAL_LOG_FILE=/tmp/aal.log\nAAL_VOLUME=0.25\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Config{Module: "pcm", Device: "null", LogLevel: aal.LogWarn, LogFile: "/tmp/aal.log", Volume: 0.25}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestEnvironmentWinsOverDotEnv(t *testing.T) {
	clearEnv(t)
	path := writeEnv(t, "AAL_MODULE=pcm\n")
	t.Setenv("AAL_MODULE", "hal")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Module != "hal" {
		t.Errorf("module = %q, want hal", cfg.Module)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"AAL_LOG_LEVEL", "loud"},
		{"AAL_VOLUME", "half"},
		{"AAL_VOLUME", "1.5"},
		{"AAL_VOLUME", "-0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("expected an error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestMalformedDotEnv(t *testing.T) {
	clearEnv(t)
	path := writeEnv(t, "AAL_MODULE='unterminated\n")
	if _, err := Load(path); err == nil {
		t.Error("expected an error for a malformed file")
	}
}
