package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":3333" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.Cache.TTL != 60*time.Second {
		t.Errorf("cache ttl = %s", cfg.Cache.TTL)
	}
	if cfg.Upload.MaxBytes != 2<<20 {
		t.Errorf("max bytes = %d", cfg.Upload.MaxBytes)
	}
	if cfg.Upload.Quality != 80 {
		t.Errorf("quality = %d", cfg.Upload.Quality)
	}
	if cfg.Upload.MaxPixels != 40_000_000 {
		t.Errorf("max pixels = %d", cfg.Upload.MaxPixels)
	}
	if cfg.HTTP.TrustProxy {
		t.Error("proxy headers trusted by default")
	}
}

func TestValidateMaxPixels(t *testing.T) {
	t.Setenv("BLOG_UPLOAD_MAX_PIXELS", "0")

	if _, err := Load(New(), ""); err == nil {
		t.Error("expected an error for upload.max_pixels = 0")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BLOG_CACHE_DRIVER", "redis")
	t.Setenv("BLOG_REDIS_ADDR", "cache:6380")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Driver != "redis" || cfg.Redis.Addr != "cache:6380" {
		t.Errorf("got driver=%q addr=%q", cfg.Cache.Driver, cfg.Redis.Addr)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.yaml")
	data := []byte("addr: \":8080\"\nupload:\n  max_bytes: 1024\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Upload.MaxBytes != 1024 {
		t.Errorf("got addr=%q max=%d", cfg.Addr, cfg.Upload.MaxBytes)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("BLOG_CACHE_DRIVER", "memcached")

	if _, err := Load(New(), ""); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}
