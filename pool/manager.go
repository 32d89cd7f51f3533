package pool

import (
	"context"
	"sync"
	"time"

	"github.com/entropool/entropool/storage"
)

// Manager guards pool lifecycle over a Repository.
//
// Claiming is the only mutation: it is serialized in-process and settled
// by the repository's atomic MarkConsumed, so concurrent claims on one
// pool produce exactly one winner; every loser gets KindConsumed. The
// manager never retries repository calls. Storage sentinels (not-found
// and friends) pass through untranslated.
type Manager struct {
	repo storage.Repository

	// Now supplies the clock; nil means time.Now. Tests pin it.
	Now func() time.Time

	mu sync.Mutex
}

func NewManager(repo storage.Repository) *Manager {
	return &Manager{repo: repo}
}

func (m *Manager) clock() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// Add persists a fully stamped pool. Callers assign the ID and both
// timestamps before calling.
func (m *Manager) Add(ctx context.Context, p *Pool) error {
	return m.repo.Create(ctx, ToRecord(p))
}

// Get returns a metadata view of the pool; raw material is never
// returned. Readers borrow raw bytes through WithRaw, consumers claim.
func (m *Manager) Get(ctx context.Context, id string) (*Pool, error) {
	rec, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	Zero(rec.Raw)
	p := FromRecord(rec)
	p.Raw = nil
	return p, nil
}

// List returns pool metadata ordered by creation time; raw material is
// never included.
func (m *Manager) List(ctx context.Context, unconsumedOnly bool) ([]*Pool, error) {
	recs, err := m.repo.List(ctx, unconsumedOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*Pool, len(recs))
	for i, rec := range recs {
		out[i] = FromRecord(rec)
	}
	return out, nil
}

// Claim consumes the pool and returns its raw material exactly once.
// The caller owns the returned bytes and must Zero them when done.
// Expired pools are refused unless allowExpired is set; consumption
// still wins over expiry in the returned error when both apply.
func (m *Manager) Claim(ctx context.Context, id string, allowExpired bool) (*Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claimLocked(ctx, id, allowExpired, m.clock())
}

func (m *Manager) claimLocked(ctx context.Context, id string, allowExpired bool, now time.Time) (*Pool, error) {
	rec, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Consumed {
		return nil, consumedError(id)
	}
	if !allowExpired && !now.Before(rec.ExpiresAt) {
		Zero(rec.Raw)
		return nil, expiredError(id)
	}
	if err := m.repo.MarkConsumed(ctx, id, now); err != nil {
		Zero(rec.Raw)
		if storage.IsAlreadyConsumed(err) {
			// Lost a cross-process race after the read.
			return nil, consumedError(id)
		}
		return nil, err
	}
	p := FromRecord(rec)
	p.Consumed = true
	p.ConsumedAt = now
	return p, nil
}

// ClaimAll consumes every listed pool or none of the raw material
// survives: on any failure the already claimed copies are wiped before
// the error returns. Pools claimed before a mid-sequence failure stay
// consumed in the repository; single-use admits no rollback.
func (m *Manager) ClaimAll(ctx context.Context, ids []string, allowExpired bool) ([]*Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	recs := make([]*storage.Record, 0, len(ids))
	wipeAll := func() {
		for _, rec := range recs {
			Zero(rec.Raw)
		}
	}

	for _, id := range ids {
		rec, err := m.repo.Get(ctx, id)
		if err != nil {
			wipeAll()
			return nil, err
		}
		if rec.Consumed {
			wipeAll()
			return nil, consumedError(id)
		}
		if !allowExpired && !now.Before(rec.ExpiresAt) {
			wipeAll()
			return nil, expiredError(id)
		}
		recs = append(recs, rec)
	}

	out := make([]*Pool, 0, len(recs))
	for _, rec := range recs {
		if err := m.repo.MarkConsumed(ctx, rec.ID, now); err != nil {
			wipeAll()
			if storage.IsAlreadyConsumed(err) {
				return nil, consumedError(rec.ID)
			}
			return nil, err
		}
		p := FromRecord(rec)
		p.Consumed = true
		p.ConsumedAt = now
		out = append(out, p)
	}
	return out, nil
}

// WithRaw lends a copy of an unconsumed pool's raw material to fn for
// read-only work (statistical analysis). The copy is wiped when fn
// returns; the pool is not consumed.
func (m *Manager) WithRaw(ctx context.Context, id string, fn func(raw []byte) error) error {
	rec, err := m.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	defer Zero(rec.Raw)
	if rec.Consumed {
		return consumedError(id)
	}
	return fn(rec.Raw)
}
