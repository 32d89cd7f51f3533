// Package pool models single-use entropy pools and their lifecycle.
//
// A pool is Created when raw material enters the system, and either
// Consumed exactly once by a derivation or left to Expire after its TTL.
// Consumed is terminal and destroys the raw material; Expired is passive:
// the metadata stays readable, and policy decides whether derivation may
// still touch the bytes.
package pool

import (
	"time"

	"github.com/entropool/entropool/quality"
	"github.com/entropool/entropool/storage"
)

// DefaultTTL is the window in which a fresh pool may be consumed.
const DefaultTTL = 90 * 24 * time.Hour

// State is the lifecycle position of a pool at a given instant.
type State string

const (
	StateCreated  State = "created"
	StateConsumed State = "consumed"
	StateExpired  State = "expired"
)

// Pool is the in-memory form of an entropy pool. Raw is present only
// while the pool is unconsumed and is nil on listings.
type Pool struct {
	ID          string
	Source      SourceKind
	Raw         []byte
	SizeBits    int
	EntropyBits int
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Consumed    bool
	ConsumedAt  time.Time
	Fingerprint string
	Label       string
	Lineage     []string
	Metrics     *quality.Report
}

// StateAt reports the pool's lifecycle state at the given instant.
// Consumed wins over Expired: a terminal state does not revert.
func (p *Pool) StateAt(now time.Time) State {
	switch {
	case p.Consumed:
		return StateConsumed
	case !now.Before(p.ExpiresAt):
		return StateExpired
	default:
		return StateCreated
	}
}

// ExpiredAt reports whether the pool's TTL has lapsed without consumption.
func (p *Pool) ExpiredAt(now time.Time) bool {
	return p.StateAt(now) == StateExpired
}

// ToRecord converts a pool to its persisted form. The raw slice is
// referenced, not copied; the repository copies on Create.
func ToRecord(p *Pool) *storage.Record {
	if p == nil {
		return nil
	}
	return &storage.Record{
		Version:     storage.RecordVersion,
		ID:          p.ID,
		Source:      uint8(p.Source),
		SizeBits:    p.SizeBits,
		EntropyBits: p.EntropyBits,
		Raw:         p.Raw,
		CreatedAt:   p.CreatedAt,
		ExpiresAt:   p.ExpiresAt,
		Consumed:    p.Consumed,
		ConsumedAt:  p.ConsumedAt,
		Fingerprint: p.Fingerprint,
		Label:       p.Label,
		Lineage:     p.Lineage,
		Metrics:     p.Metrics,
	}
}

// FromRecord converts a persisted record back to a pool. The record's
// slices are referenced, not copied; repositories already return copies.
func FromRecord(rec *storage.Record) *Pool {
	if rec == nil {
		return nil
	}
	return &Pool{
		ID:          rec.ID,
		Source:      SourceKind(rec.Source),
		Raw:         rec.Raw,
		SizeBits:    rec.SizeBits,
		EntropyBits: rec.EntropyBits,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   rec.ExpiresAt,
		Consumed:    rec.Consumed,
		ConsumedAt:  rec.ConsumedAt,
		Fingerprint: rec.Fingerprint,
		Label:       rec.Label,
		Lineage:     rec.Lineage,
		Metrics:     rec.Metrics,
	}
}

// Descriptor is the JSON boundary form of a pool: metadata only, never
// raw material.
type Descriptor struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	State       string          `json:"state"`
	SizeBits    int             `json:"sizeBits"`
	EntropyBits int             `json:"entropyBits"`
	CreatedAt   time.Time       `json:"createdAt"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	ConsumedAt  *time.Time      `json:"consumedAt,omitempty"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Label       string          `json:"label,omitempty"`
	Lineage     []string        `json:"lineage,omitempty"`
	Metrics     *quality.Report `json:"metrics,omitempty"`
}

// DescriptorOf renders a pool for external consumption at the given
// instant.
func DescriptorOf(p *Pool, now time.Time) Descriptor {
	d := Descriptor{
		ID:          p.ID,
		Source:      p.Source.String(),
		State:       string(p.StateAt(now)),
		SizeBits:    p.SizeBits,
		EntropyBits: p.EntropyBits,
		CreatedAt:   p.CreatedAt,
		ExpiresAt:   p.ExpiresAt,
		Fingerprint: p.Fingerprint,
		Label:       p.Label,
		Lineage:     p.Lineage,
		Metrics:     p.Metrics,
	}
	if p.Consumed {
		at := p.ConsumedAt
		d.ConsumedAt = &at
	}
	return d
}
