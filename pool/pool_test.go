package pool

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/entropool/entropool/quality"
)

var testCreated = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testPool(id string) *Pool {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return &Pool{
		ID:          id,
		Source:      SourceSystemRNG,
		Raw:         raw,
		SizeBits:    256,
		EntropyBits: 256,
		CreatedAt:   testCreated,
		ExpiresAt:   testCreated.Add(DefaultTTL),
		Fingerprint: Fingerprint(raw),
	}
}

func TestStateAt(t *testing.T) {
	p := testPool("p1")

	if got := p.StateAt(testCreated.Add(time.Hour)); got != StateCreated {
		t.Fatalf("fresh pool: got %v", got)
	}
	// Expiry is inclusive: the pool is expired at the exact instant.
	if got := p.StateAt(p.ExpiresAt); got != StateExpired {
		t.Fatalf("at expiry instant: got %v", got)
	}
	if got := p.StateAt(p.ExpiresAt.Add(-time.Nanosecond)); got != StateCreated {
		t.Fatalf("just before expiry: got %v", got)
	}

	p.Consumed = true
	p.ConsumedAt = testCreated.Add(time.Hour)
	if got := p.StateAt(p.ExpiresAt.Add(time.Hour)); got != StateConsumed {
		t.Fatalf("consumed pool past TTL: got %v want consumed", got)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	p := testPool("p2")
	p.Lineage = []string{"a", "b"}
	p.Metrics = &quality.Report{SizeBytes: 32, Entropy: 4.9, Tier: quality.TierPoor}
	p.Label = "POOL/SYSRNG/OSRNG:p2:2026-03-01#BITS=256|X"

	got := FromRecord(ToRecord(p))
	if got.ID != p.ID || got.Source != p.Source || got.SizeBits != p.SizeBits ||
		got.EntropyBits != p.EntropyBits || got.Fingerprint != p.Fingerprint ||
		got.Label != p.Label {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, p)
	}
	if string(got.Raw) != string(p.Raw) {
		t.Fatalf("raw mismatch")
	}
	if got.Metrics.Entropy != 4.9 || len(got.Lineage) != 2 {
		t.Fatalf("metrics/lineage mismatch")
	}
	if ToRecord(nil) != nil || FromRecord(nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}

func TestDescriptorOf(t *testing.T) {
	p := testPool("p3")
	now := testCreated.Add(time.Hour)

	d := DescriptorOf(p, now)
	if d.State != "created" || d.Source != "system-rng" || d.ConsumedAt != nil {
		t.Fatalf("descriptor: %+v", d)
	}

	p.Consumed = true
	p.ConsumedAt = now
	d = DescriptorOf(p, now)
	if d.State != "consumed" || d.ConsumedAt == nil || !d.ConsumedAt.Equal(now) {
		t.Fatalf("consumed descriptor: %+v", d)
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{`"id":"p3"`, `"state":"consumed"`, `"sizeBits":256`, `"source":"system-rng"`} {
		if !strings.Contains(string(b), field) {
			t.Fatalf("descriptor JSON missing %s: %s", field, b)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte{1, 2, 3})
	b := Fingerprint([]byte{1, 2, 3})
	c := Fingerprint([]byte{1, 2, 4})
	if a != b {
		t.Fatalf("fingerprint not deterministic: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("distinct inputs collided: %s", a)
	}
	if len(a) != 16 {
		t.Fatalf("fingerprint length: got %d want 16 hex chars", len(a))
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not wiped: %d", i, v)
		}
	}
	Zero(nil)
}
