// Package config loads the versioned YAML configuration shared by the
// entropool binaries and opens the backends it names.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cloudflare/circl/xof"
	"gopkg.in/yaml.v3"

	"github.com/entropool/entropool/combiner"
	"github.com/entropool/entropool/derive"
	"github.com/entropool/entropool/quality"
	"github.com/entropool/entropool/storage"
	"github.com/entropool/entropool/storage/filerepo"
	"github.com/entropool/entropool/storage/grpcrepo"
)

// Version is the config schema version this build reads.
const Version = 1

type Config struct {
	Version    int        `yaml:"version"`
	Repository Repository `yaml:"repository"`
	Policy     Policy     `yaml:"policy"`
	Combine    Combine    `yaml:"combine"`
	Derive     Derive     `yaml:"derive"`
	Audit      Audit      `yaml:"audit"`
}

type Repository struct {
	// Backend is one of memory, file, grpc.
	Backend string `yaml:"backend"`
	// Dir is the file backend's root directory.
	Dir string `yaml:"dir"`
	// Target is the grpc backend's dial target.
	Target string `yaml:"target"`
	// TimeoutMS bounds each grpc call when non-zero.
	TimeoutMS int `yaml:"timeout_ms"`
}

type Policy struct {
	MinEntropyBits  int    `yaml:"min_entropy_bits"`
	MinTier         string `yaml:"min_tier"`
	TTLDays         int    `yaml:"ttl_days"`
	AllowExpired    bool   `yaml:"allow_expired"`
	AcceptBelowTier bool   `yaml:"accept_below_tier"`
}

type Combine struct {
	XOF string `yaml:"xof"`
}

type Derive struct {
	UsernameLength int `yaml:"username_length"`
}

type Audit struct {
	// Path appends events to a hash-chained trail file when set.
	Path string `yaml:"path"`
	// Slog mirrors events to stderr as structured log lines.
	Slog bool `yaml:"slog"`
}

// Default is the configuration a fresh install runs with.
func Default() Config {
	return Config{
		Version: Version,
		Repository: Repository{
			Backend: "file",
			Dir:     "pools",
		},
		Policy: Policy{
			MinEntropyBits: 256,
			MinTier:        quality.TierGood.String(),
			TTLDays:        90,
		},
		Combine: Combine{XOF: "SHAKE256"},
		Derive:  Derive{UsernameLength: derive.DefaultLength},
	}
}

// Load reads the config at path. A missing file yields Default; a
// present file must validate.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Version != Version {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}
	switch c.Repository.Backend {
	case "memory":
	case "file":
		if c.Repository.Dir == "" {
			return fmt.Errorf("file backend requires repository.dir")
		}
	case "grpc":
		if c.Repository.Target == "" {
			return fmt.Errorf("grpc backend requires repository.target")
		}
	default:
		return fmt.Errorf("unknown repository backend %q", c.Repository.Backend)
	}
	if _, err := quality.ParseTier(c.Policy.MinTier); err != nil {
		return err
	}
	if c.Policy.MinEntropyBits < 0 {
		return fmt.Errorf("negative min_entropy_bits")
	}
	if c.Policy.TTLDays <= 0 {
		return fmt.Errorf("ttl_days must be positive")
	}
	if _, err := combiner.ParseXOF(c.Combine.XOF); err != nil {
		return err
	}
	if c.Derive.UsernameLength < 1 || c.Derive.UsernameLength > derive.MaxLength {
		return fmt.Errorf("username_length outside 1..%d", derive.MaxLength)
	}
	return nil
}

// DerivePolicy maps the policy section onto derive.Policy.
func (c Config) DerivePolicy() (derive.Policy, error) {
	tier, err := quality.ParseTier(c.Policy.MinTier)
	if err != nil {
		return derive.Policy{}, err
	}
	return derive.Policy{
		MinEntropyBits:  c.Policy.MinEntropyBits,
		MinTier:         tier,
		AllowExpired:    c.Policy.AllowExpired,
		AcceptBelowTier: c.Policy.AcceptBelowTier,
		TTL:             time.Duration(c.Policy.TTLDays) * 24 * time.Hour,
	}, nil
}

// XOFID resolves the configured extension function.
func (c Config) XOFID() (xof.ID, error) {
	return combiner.ParseXOF(c.Combine.XOF)
}

// OpenRepository opens the configured pool repository. The returned
// close function is nil for backends with nothing to release.
func (c Config) OpenRepository() (storage.Repository, func() error, error) {
	switch c.Repository.Backend {
	case "memory":
		return storage.NewMemory(), nil, nil
	case "file":
		repo, err := filerepo.New(c.Repository.Dir)
		if err != nil {
			return nil, nil, err
		}
		return repo, nil, nil
	case "grpc":
		client, err := grpcrepo.Dial(c.Repository.Target, grpcrepo.DialOptions{
			Timeout: time.Duration(c.Repository.TimeoutMS) * time.Millisecond,
		})
		if err != nil {
			return nil, nil, err
		}
		client.Timeout = time.Duration(c.Repository.TimeoutMS) * time.Millisecond
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown repository backend %q", c.Repository.Backend)
	}
}
