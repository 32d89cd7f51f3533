package derive

import (
	"context"
	"fmt"
	"time"

	"github.com/entropool/entropool/pool"
	"github.com/entropool/entropool/quality"
)

// InitOptions carries the collaborators InitializeSalt needs beyond the
// manager and the policy.
type InitOptions struct {
	// Now supplies the clock; nil means time.Now in UTC.
	Now func() time.Time

	// OnOverride fires when the policy explicitly admits a pool that the
	// default gate would refuse: kind is KindExpired for a freshness
	// override, KindQualityRejected for a quality override. Hosts wire
	// this to their audit trail.
	OnOverride func(kind pool.Kind, p *pool.Pool)
}

func (o InitOptions) clock() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// InitializeSalt consumes exactly one pool and derives the persistent
// salt from it.
//
// Every policy check runs before the claim, so any refusal leaves the
// pool Created. The claim itself is the single-winner primitive: of N
// concurrent callers exactly one gets a salt and the rest get
// KindConsumed. The claimed raw material is wiped before returning.
func InitializeSalt(ctx context.Context, mgr *pool.Manager, poolID string, pol Policy, opts InitOptions) (*Salt, error) {
	now := opts.clock()

	p, err := mgr.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if p.Consumed {
		return nil, &pool.Error{
			Kind:    pool.KindConsumed,
			RuleID:  "EP-POOL-001",
			Message: "pool " + poolID + " is already consumed",
			PoolID:  poolID,
		}
	}

	expired := p.ExpiredAt(now)
	if expired && !pol.AllowExpired {
		return nil, &pool.Error{
			Kind:    pool.KindExpired,
			RuleID:  "EP-POOL-002",
			Message: "pool " + poolID + " is expired",
			PoolID:  poolID,
		}
	}

	if p.EntropyBits < pol.MinEntropyBits {
		return nil, &pool.Error{
			Kind:         pool.KindInsufficientEntropy,
			RuleID:       "EP-DRV-001",
			Message:      fmt.Sprintf("pool %s claims %d entropy bits, policy requires %d", poolID, p.EntropyBits, pol.MinEntropyBits),
			PoolID:       poolID,
			RequiredBits: pol.MinEntropyBits,
			ActualBits:   p.EntropyBits,
		}
	}

	tier, err := poolTier(ctx, mgr, p)
	if err != nil {
		return nil, err
	}
	belowTier := !tier.AtLeast(pol.MinTier)
	if belowTier && !pol.AcceptBelowTier {
		return nil, &pool.Error{
			Kind:    pool.KindQualityRejected,
			RuleID:  "EP-DRV-002",
			Message: fmt.Sprintf("pool %s is %s, policy requires %s", poolID, tier, pol.MinTier),
			PoolID:  poolID,
		}
	}

	claimed, err := mgr.Claim(ctx, poolID, pol.AllowExpired)
	if err != nil {
		return nil, err
	}
	defer pool.Zero(claimed.Raw)

	// Overrides are reported only for the claim winner: a caller that
	// loses the race derives nothing and admits nothing.
	if expired && opts.OnOverride != nil {
		opts.OnOverride(pool.KindExpired, claimed)
	}
	if belowTier && opts.OnOverride != nil {
		opts.OnOverride(pool.KindQualityRejected, claimed)
	}

	secret, err := deriveSecret(claimed.Raw, poolID)
	if err != nil {
		return nil, err
	}
	return newSalt(secret, claimed.Source.Token(), poolID, now)
}

// poolTier returns the pool's classified tier, evaluating the stored
// raw material when validation has not run yet.
func poolTier(ctx context.Context, mgr *pool.Manager, p *pool.Pool) (quality.Tier, error) {
	if p.Metrics != nil {
		return p.Metrics.Tier, nil
	}
	var tier quality.Tier
	err := mgr.WithRaw(ctx, p.ID, func(raw []byte) error {
		tier = quality.Evaluate(raw).Tier
		return nil
	})
	if err != nil {
		return quality.TierPoor, err
	}
	return tier, nil
}
