package derive

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/entropool/entropool/label"
	"github.com/entropool/entropool/pool"
	"github.com/entropool/entropool/quality"
	"github.com/entropool/entropool/storage"
)

var testDate = time.Now().UTC().Truncate(time.Second)

func newTestManager(t *testing.T, now time.Time) *pool.Manager {
	t.Helper()
	m := pool.NewManager(storage.NewMemory())
	m.Now = func() time.Time { return now }
	return m
}

// addPool persists a 64-byte pool claiming 512 bits. tier == nil leaves
// the pool unvalidated.
func addPool(t *testing.T, m *pool.Manager, id string, tier *quality.Tier) *pool.Pool {
	t.Helper()
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(i*31 + 7 + len(id))
	}
	p := &pool.Pool{
		ID:          id,
		Source:      pool.SourceSystemRNG,
		Raw:         raw,
		SizeBits:    8 * len(raw),
		EntropyBits: 8 * len(raw),
		CreatedAt:   testDate,
		ExpiresAt:   testDate.Add(pool.DefaultTTL),
		Fingerprint: pool.Fingerprint(raw),
	}
	if tier != nil {
		p.Metrics = &quality.Report{SizeBytes: len(raw), Tier: *tier}
	}
	if err := m.Add(context.Background(), p); err != nil {
		t.Fatalf("Add(%s): %v", id, err)
	}
	return p
}

func tierOf(v quality.Tier) *quality.Tier { return &v }

func relaxedPolicy() Policy {
	pol := DefaultPolicy()
	pol.MinTier = quality.TierPoor
	return pol
}

func TestInitializeSalt(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testDate.Add(time.Hour))
	addPool(t, m, "p1", tierOf(quality.TierExcellent))

	salt, err := InitializeSalt(ctx, m, "p1", DefaultPolicy(), InitOptions{Now: func() time.Time { return testDate.Add(time.Hour) }})
	if err != nil {
		t.Fatalf("InitializeSalt: %v", err)
	}
	if salt.OwnerPoolID() != "p1" || salt.Algorithm() != AlgorithmHKDFSHA256 {
		t.Fatalf("salt metadata: owner=%q algorithm=%q", salt.OwnerPoolID(), salt.Algorithm())
	}
	if len(salt.Bytes()) != SaltSize {
		t.Fatalf("salt is %d bytes, want %d", len(salt.Bytes()), SaltSize)
	}
	if salt.Ref() == "" {
		t.Fatal("salt has no ref")
	}

	lbl, err := label.Parse(salt.Label())
	if err != nil {
		t.Fatalf("salt label does not parse: %v", err)
	}
	if lbl.Category != label.CategorySalt || lbl.Data != "p1" {
		t.Fatalf("salt label fields: %+v", lbl)
	}

	// The side effect: exactly-once consumption.
	got, err := m.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Consumed {
		t.Fatalf("owner pool not consumed: %+v", got)
	}

	_, err = InitializeSalt(ctx, m, "p1", DefaultPolicy(), InitOptions{})
	if !pool.IsKind(err, pool.KindConsumed) {
		t.Fatalf("re-derivation: got err=%v, want KindConsumed", err)
	}
}

func TestInitializeSaltDeterministic(t *testing.T) {
	ctx := context.Background()
	var secrets [][]byte
	for run := 0; run < 2; run++ {
		m := newTestManager(t, testDate.Add(time.Hour))
		addPool(t, m, "p1", tierOf(quality.TierGood))
		salt, err := InitializeSalt(ctx, m, "p1", DefaultPolicy(), InitOptions{Now: func() time.Time { return testDate }})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		secrets = append(secrets, salt.Bytes())
	}
	if !bytes.Equal(secrets[0], secrets[1]) {
		t.Fatal("identical pool material derived different salts")
	}
}

func TestInitializeSaltInsufficientEntropy(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testDate.Add(time.Hour))
	addPool(t, m, "p1", tierOf(quality.TierExcellent))

	pol := DefaultPolicy()
	pol.MinEntropyBits = 1024

	_, err := InitializeSalt(ctx, m, "p1", pol, InitOptions{})
	if !pool.IsKind(err, pool.KindInsufficientEntropy) {
		t.Fatalf("got err=%v, want KindInsufficientEntropy", err)
	}
	var perr *pool.Error
	if !errors.As(err, &perr) || perr.RequiredBits != 1024 || perr.ActualBits != 512 {
		t.Fatalf("error context: %+v", perr)
	}

	// Refusal precedes the claim.
	got, err := m.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Consumed {
		t.Fatal("refused derivation consumed the pool")
	}
}

func TestInitializeSaltQualityGate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testDate.Add(time.Hour))
	addPool(t, m, "p1", tierOf(quality.TierFair))

	_, err := InitializeSalt(ctx, m, "p1", DefaultPolicy(), InitOptions{})
	if !pool.IsKind(err, pool.KindQualityRejected) {
		t.Fatalf("got err=%v, want KindQualityRejected", err)
	}
	if got, _ := m.Get(ctx, "p1"); got.Consumed {
		t.Fatal("quality refusal consumed the pool")
	}

	// Explicit override admits the pool and reports the override.
	pol := DefaultPolicy()
	pol.AcceptBelowTier = true
	var overrides []pool.Kind
	_, err = InitializeSalt(ctx, m, "p1", pol, InitOptions{
		OnOverride: func(kind pool.Kind, _ *pool.Pool) { overrides = append(overrides, kind) },
	})
	if err != nil {
		t.Fatalf("override derivation: %v", err)
	}
	if len(overrides) != 1 || overrides[0] != pool.KindQualityRejected {
		t.Fatalf("override report: %v", overrides)
	}
}

func TestInitializeSaltFreshnessGate(t *testing.T) {
	ctx := context.Background()
	now := testDate.Add(pool.DefaultTTL + time.Hour)
	m := newTestManager(t, now)
	addPool(t, m, "p1", tierOf(quality.TierExcellent))

	_, err := InitializeSalt(ctx, m, "p1", DefaultPolicy(), InitOptions{Now: func() time.Time { return now }})
	if !pool.IsKind(err, pool.KindExpired) {
		t.Fatalf("got err=%v, want KindExpired", err)
	}
	if got, _ := m.Get(ctx, "p1"); got.Consumed {
		t.Fatal("freshness refusal consumed the pool")
	}

	pol := DefaultPolicy()
	pol.AllowExpired = true
	var overrides []pool.Kind
	salt, err := InitializeSalt(ctx, m, "p1", pol, InitOptions{
		Now:        func() time.Time { return now },
		OnOverride: func(kind pool.Kind, _ *pool.Pool) { overrides = append(overrides, kind) },
	})
	if err != nil {
		t.Fatalf("override derivation: %v", err)
	}
	if salt == nil || len(overrides) != 1 || overrides[0] != pool.KindExpired {
		t.Fatalf("override report: %v", overrides)
	}
}

func TestInitializeSaltEvaluatesUnvalidatedPools(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testDate.Add(time.Hour))

	// No stored metrics: the gate evaluates the raw material itself.
	// 64 low-variety bytes classify Poor.
	addPool(t, m, "p1", nil)

	_, err := InitializeSalt(ctx, m, "p1", DefaultPolicy(), InitOptions{})
	if !pool.IsKind(err, pool.KindQualityRejected) {
		t.Fatalf("got err=%v, want KindQualityRejected", err)
	}

	if _, err := InitializeSalt(ctx, m, "p1", relaxedPolicy(), InitOptions{}); err != nil {
		t.Fatalf("relaxed policy: %v", err)
	}
}

// claimLostRepo reports every consumption attempt as already settled,
// simulating a claim race lost to another process after the policy
// checks passed.
type claimLostRepo struct {
	storage.Repository
}

func (r claimLostRepo) MarkConsumed(ctx context.Context, id string, at time.Time) error {
	return storage.ErrAlreadyConsumed
}

func TestInitializeSaltLostClaimReportsNoOverride(t *testing.T) {
	ctx := context.Background()
	now := testDate.Add(pool.DefaultTTL + time.Hour)

	inner := storage.NewMemory()
	seed := pool.NewManager(inner)
	seed.Now = func() time.Time { return now }
	addPool(t, seed, "p1", tierOf(quality.TierFair))

	m := pool.NewManager(claimLostRepo{Repository: inner})
	m.Now = seed.Now

	pol := DefaultPolicy()
	pol.AllowExpired = true
	pol.AcceptBelowTier = true
	var overrides []pool.Kind
	_, err := InitializeSalt(ctx, m, "p1", pol, InitOptions{
		Now:        func() time.Time { return now },
		OnOverride: func(kind pool.Kind, _ *pool.Pool) { overrides = append(overrides, kind) },
	})
	if !pool.IsKind(err, pool.KindConsumed) {
		t.Fatalf("lost claim: got err=%v, want KindConsumed", err)
	}
	if len(overrides) != 0 {
		t.Fatalf("lost claim reported overrides for a derivation that never happened: %v", overrides)
	}
}

func TestInitializeSaltConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testDate.Add(time.Hour))
	addPool(t, m, "p1", tierOf(quality.TierExcellent))

	const racers = 32
	var (
		start, done sync.WaitGroup
		mu          sync.Mutex
		winners     int
		losers      int
	)
	start.Add(1)
	done.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer done.Done()
			start.Wait()
			_, err := InitializeSalt(ctx, m, "p1", DefaultPolicy(), InitOptions{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case pool.IsKind(err, pool.KindConsumed):
				losers++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	start.Done()
	done.Wait()

	if winners != 1 || losers != racers-1 {
		t.Fatalf("winners=%d losers=%d, want 1/%d", winners, losers, racers-1)
	}
}
