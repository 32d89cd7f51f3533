package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entropool/entropool/quality"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
}

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("missing file did not yield defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entropool.yaml")
	content := `
version: 1
repository:
  backend: grpc
  target: 127.0.0.1:7878
  timeout_ms: 500
policy:
  min_entropy_bits: 512
  min_tier: EXCELLENT
  ttl_days: 30
  allow_expired: true
combine:
  xof: BLAKE2XB
derive:
  username_length: 24
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Repository.Backend != "grpc" || cfg.Repository.Target != "127.0.0.1:7878" {
		t.Fatalf("repository: %+v", cfg.Repository)
	}

	pol, err := cfg.DerivePolicy()
	if err != nil {
		t.Fatalf("DerivePolicy: %v", err)
	}
	if pol.MinEntropyBits != 512 || pol.MinTier != quality.TierExcellent || !pol.AllowExpired {
		t.Fatalf("policy: %+v", pol)
	}
	if pol.TTL != 30*24*time.Hour {
		t.Fatalf("policy TTL: %v", pol.TTL)
	}

	if _, err := cfg.XOFID(); err != nil {
		t.Fatalf("XOFID: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := map[string]func(*Config){
		"bad version":       func(c *Config) { c.Version = 2 },
		"unknown backend":   func(c *Config) { c.Repository.Backend = "s3" },
		"file without dir":  func(c *Config) { c.Repository.Backend = "file"; c.Repository.Dir = "" },
		"grpc no target":    func(c *Config) { c.Repository.Backend = "grpc"; c.Repository.Target = "" },
		"unknown tier":      func(c *Config) { c.Policy.MinTier = "GREAT" },
		"zero ttl":          func(c *Config) { c.Policy.TTLDays = 0 },
		"unknown xof":       func(c *Config) { c.Combine.XOF = "MD5" },
		"oversized length":  func(c *Config) { c.Derive.UsernameLength = 4096 },
		"zero length":       func(c *Config) { c.Derive.UsernameLength = 0 },
		"negative min bits": func(c *Config) { c.Policy.MinEntropyBits = -1 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted %+v", name, cfg)
		}
	}
}

func TestOpenRepository(t *testing.T) {
	cfg := Default()
	cfg.Repository.Backend = "memory"
	repo, closeFn, err := cfg.OpenRepository()
	if err != nil || repo == nil {
		t.Fatalf("memory backend: (%v, %v)", repo, err)
	}
	if closeFn != nil {
		t.Fatal("memory backend returned a close function")
	}

	cfg.Repository.Backend = "file"
	cfg.Repository.Dir = t.TempDir()
	repo, _, err = cfg.OpenRepository()
	if err != nil || repo == nil {
		t.Fatalf("file backend: (%v, %v)", repo, err)
	}
}
