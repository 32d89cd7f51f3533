package engine

import (
	"context"
	"strconv"

	"github.com/entropool/entropool/audit"
	"github.com/entropool/entropool/derive"
	"github.com/entropool/entropool/pool"
)

// InitializeSalt consumes the named pool under the engine's policy and
// returns the derived salt. Policy overrides that admitted the pool are
// recorded once the claim is won; success records salt.initialized.
func (e *Engine) InitializeSalt(ctx context.Context, poolID string) (*derive.Salt, error) {
	salt, err := derive.InitializeSalt(ctx, e.mgr, poolID, e.policy, derive.InitOptions{
		Now: e.now,
		OnOverride: func(kind pool.Kind, p *pool.Pool) {
			op := audit.OpQualityOverride
			detail := "below-tier pool admitted for derivation"
			if kind == pool.KindExpired {
				op = audit.OpFreshnessOverride
				detail = "expired pool admitted for derivation"
			}
			e.record(audit.Event{Op: op, PoolID: p.ID, Source: p.Source.String(), Detail: detail})
		},
	})
	if err != nil {
		return nil, err
	}

	e.record(audit.Event{
		Op:      audit.OpSaltInitialized,
		PoolID:  poolID,
		SaltRef: salt.Ref(),
		Label:   salt.Label(),
	})
	return salt, nil
}

// DeriveUsername derives the identifier for domain from the salt.
// Pure with respect to pool state; the audit event records the domain
// and length, never the derived value.
func (e *Engine) DeriveUsername(salt *derive.Salt, domain string, length int) (string, error) {
	normalized, err := derive.NormalizeDomain(domain)
	if err != nil {
		return "", err
	}
	sc := salt.Context()
	value, err := sc.Username(normalized, length)
	if err != nil {
		return "", err
	}

	if length == 0 {
		length = derive.DefaultLength
	}
	e.record(audit.Event{
		Op:      audit.OpIdentifierDerived,
		SaltRef: salt.Ref(),
		Domain:  normalized,
		Detail:  "length=" + strconv.Itoa(length),
	})
	return value, nil
}

// VerifyUsername recomputes and compares in constant time. No side
// effects, no audit event.
func (e *Engine) VerifyUsername(salt *derive.Salt, domain, candidate string) (bool, error) {
	sc := salt.Context()
	return sc.Verify(domain, candidate)
}
