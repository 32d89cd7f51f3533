package derive

import (
	"time"

	"github.com/entropool/entropool/pool"
	"github.com/entropool/entropool/quality"
)

// Policy gates which pools may become salts. Overrides are explicit and
// auditable; nothing in this package flips one implicitly.
type Policy struct {
	// MinEntropyBits is the claimed-entropy floor for the owner pool.
	MinEntropyBits int

	// MinTier is the statistical quality floor.
	MinTier quality.Tier

	// AllowExpired admits pools past their TTL. Freshness override.
	AllowExpired bool

	// AcceptBelowTier admits pools classified under MinTier. Quality
	// override.
	AcceptBelowTier bool

	// TTL stamps ExpiresAt on newly collected pools.
	TTL time.Duration
}

// DefaultPolicy is the gate new deployments start from: 256 claimed
// bits, GOOD quality, 90-day freshness, no overrides.
func DefaultPolicy() Policy {
	return Policy{
		MinEntropyBits: 256,
		MinTier:        quality.TierGood,
		TTL:            pool.DefaultTTL,
	}
}
