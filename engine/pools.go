package engine

import (
	"context"
	"sort"
	"strconv"

	"github.com/entropool/entropool/audit"
	"github.com/entropool/entropool/combiner"
	"github.com/entropool/entropool/label"
	"github.com/entropool/entropool/pool"
	"github.com/entropool/entropool/quality"
)

// CollectEntropy gathers at least targetBits from the named source and
// persists the result as a new pool. The returned pool is a metadata
// view: the raw material lives only in the repository.
func (e *Engine) CollectEntropy(ctx context.Context, kind pool.SourceKind, targetBits int) (*pool.Pool, error) {
	c, ok := e.sources.Lookup(kind)
	if !ok {
		return nil, &pool.Error{
			Kind:    pool.KindHardwareUnavailable,
			RuleID:  "EP-ENG-001",
			Message: "no collector registered for " + kind.String(),
		}
	}

	data, actualBits, err := c.Collect(ctx, targetBits)
	if err != nil {
		return nil, err
	}
	defer pool.Zero(data)

	now := e.now()
	id := e.newID()
	metrics := quality.Evaluate(data)

	lbl, err := label.ForPool(kind.Token(), sourceAlgorithm(kind), id, now,
		label.Param{Key: label.KeyBits, Value: strconv.Itoa(8 * len(data))},
		label.Param{Key: label.KeyEntropy, Value: strconv.Itoa(actualBits)},
	)
	if err != nil {
		return nil, err
	}

	p := &pool.Pool{
		ID:          id,
		Source:      kind,
		Raw:         data,
		SizeBits:    8 * len(data),
		EntropyBits: actualBits,
		CreatedAt:   now,
		ExpiresAt:   now.Add(e.policy.TTL),
		Fingerprint: pool.Fingerprint(data),
		Label:       lbl,
		Metrics:     &metrics,
	}
	if err := e.mgr.Add(ctx, p); err != nil {
		return nil, err
	}

	e.record(audit.Event{
		Op:     audit.OpPoolCollected,
		PoolID: id,
		Source: kind.String(),
		Bits:   actualBits,
		Tier:   metrics.Tier.String(),
		Label:  lbl,
	})

	meta := *p
	meta.Raw = nil
	return &meta, nil
}

// CombineAndValidate claims every listed pool, mixes their material into
// one composite pool, validates it, and persists it with lineage.
//
// Inputs are combined in ascending pool-ID order, so the operation is
// argument-order independent even though the mixing construction is
// positional. The contributors are consumed: their material lives on
// only inside the composite, and deriving from both a composite and its
// contributors is structurally impossible.
func (e *Engine) CombineAndValidate(ctx context.Context, poolIDs []string) (*pool.Pool, error) {
	if len(poolIDs) == 0 {
		return nil, &pool.Error{
			Kind:    pool.KindEncoding,
			RuleID:  "EP-ENG-002",
			Message: "combine requires at least one pool",
		}
	}
	ids := append([]string(nil), poolIDs...)
	sort.Strings(ids)

	claimed, err := e.mgr.ClaimAll(ctx, ids, e.policy.AllowExpired)
	if err != nil {
		return nil, err
	}
	wipe := func() {
		for _, p := range claimed {
			pool.Zero(p.Raw)
		}
	}
	defer wipe()

	now := e.now()
	inputs := make([]combiner.Input, len(claimed))
	for i, p := range claimed {
		inputs[i] = combiner.Input{Data: p.Raw, Bits: p.EntropyBits}
		if e.policy.AllowExpired && !p.ConsumedAt.Before(p.ExpiresAt) {
			e.record(audit.Event{
				Op:     audit.OpFreshnessOverride,
				PoolID: p.ID,
				Detail: "expired pool admitted into combination",
			})
		}
	}

	out, err := e.comb.Combine(inputs)
	if err != nil {
		return nil, err
	}
	defer pool.Zero(out.Data)

	id := e.newID()
	metrics := quality.Evaluate(out.Data)

	lbl, err := label.ForPool(pool.SourceComposite.Token(), e.comb.Algorithm(), id, now,
		label.Param{Key: label.KeyBits, Value: strconv.Itoa(8 * len(out.Data))},
		label.Param{Key: label.KeyEntropy, Value: strconv.Itoa(out.Bits)},
		label.Param{Key: label.KeySources, Value: strconv.Itoa(len(ids))},
	)
	if err != nil {
		return nil, err
	}

	p := &pool.Pool{
		ID:          id,
		Source:      pool.SourceComposite,
		Raw:         out.Data,
		SizeBits:    8 * len(out.Data),
		EntropyBits: out.Bits,
		CreatedAt:   now,
		ExpiresAt:   now.Add(e.policy.TTL),
		Fingerprint: pool.Fingerprint(out.Data),
		Label:       lbl,
		Lineage:     ids,
		Metrics:     &metrics,
	}
	if err := e.mgr.Add(ctx, p); err != nil {
		return nil, err
	}

	e.record(audit.Event{
		Op:      audit.OpPoolCombined,
		PoolID:  id,
		Source:  pool.SourceComposite.String(),
		Bits:    out.Bits,
		Tier:    metrics.Tier.String(),
		Label:   lbl,
		Lineage: ids,
	})

	meta := *p
	meta.Raw = nil
	return &meta, nil
}

// ValidatePool re-runs the statistical battery over a stored pool's raw
// material without consuming it. The repository keeps the metrics
// attached at build time; the re-computed report is returned to the
// caller and recorded in the audit trail.
func (e *Engine) ValidatePool(ctx context.Context, id string) (quality.Report, error) {
	var report quality.Report
	err := e.mgr.WithRaw(ctx, id, func(raw []byte) error {
		report = quality.Evaluate(raw)
		return nil
	})
	if err != nil {
		return quality.Report{}, err
	}

	e.record(audit.Event{
		Op:     audit.OpPoolValidated,
		PoolID: id,
		Bits:   8 * report.SizeBytes,
		Tier:   report.Tier.String(),
	})
	return report, nil
}

// Pools lists pool descriptors, oldest first.
func (e *Engine) Pools(ctx context.Context, unconsumedOnly bool) ([]pool.Descriptor, error) {
	pools, err := e.mgr.List(ctx, unconsumedOnly)
	if err != nil {
		return nil, err
	}
	now := e.now()
	out := make([]pool.Descriptor, len(pools))
	for i, p := range pools {
		out[i] = pool.DescriptorOf(p, now)
	}
	return out, nil
}
