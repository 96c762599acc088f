package config

import (
	"testing"
	"time"
)

// TestLoadDefaults verifies sensible defaults when nothing is set.
func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Addr != defaultAddr {
		t.Fatalf("unexpected addr %s", cfg.Addr)
	}
	if cfg.MaxUploadBytes != defaultMaxUpload {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes)
	}
	if cfg.ProviderTimeout != defaultTimeout {
		t.Fatalf("unexpected timeout %v", cfg.ProviderTimeout)
	}
	if cfg.StoreKind != "sqlite" {
		t.Fatalf("unexpected store kind %s", cfg.StoreKind)
	}
}

// TestLoadFromEnvironment reads overrides from the process environment.
func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("STORE", "memory")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("DEMO_GUESS", "true")
	t.Setenv("AUDD_API_TOKEN", "tok")

	cfg := Load()
	if cfg.Addr != ":9999" || cfg.StoreKind != "memory" {
		t.Fatalf("env overrides ignored: %+v", cfg)
	}
	if cfg.MaxUploadBytes != 2048 || cfg.ProviderTimeout != 3*time.Second {
		t.Fatalf("numeric overrides ignored: %+v", cfg)
	}
	if !cfg.GuessFallback || cfg.AudDToken != "tok" {
		t.Fatalf("flags ignored: %+v", cfg)
	}
}

// TestLoadRejectsInvalidValues falls back to defaults for junk input.
func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "-7")
	t.Setenv("PROVIDER_TIMEOUT", "soon")

	cfg := Load()
	if cfg.MaxUploadBytes != defaultMaxUpload {
		t.Fatalf("negative limit accepted: %d", cfg.MaxUploadBytes)
	}
	if cfg.ProviderTimeout != defaultTimeout {
		t.Fatalf("junk duration accepted: %v", cfg.ProviderTimeout)
	}
}
