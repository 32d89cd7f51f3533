// Package engine is the orchestrating facade over sources, the pool
// lifecycle, the combiner, the validator, and derivation.
//
// The engine owns no behavior of its own: it sequences the collaborators
// and emits audit events at every transition. It never prints or logs;
// the injected Recorder is the only observability seam.
package engine

import (
	"time"

	"github.com/cloudflare/circl/xof"
	"github.com/google/uuid"

	"github.com/entropool/entropool/audit"
	"github.com/entropool/entropool/combiner"
	"github.com/entropool/entropool/derive"
	"github.com/entropool/entropool/pool"
	"github.com/entropool/entropool/source"
	"github.com/entropool/entropool/storage"
)

// Options configures an Engine. The zero value works: default policy,
// no registered sources, Noop audit, SHAKE256 extension.
type Options struct {
	// Sources resolves source kinds to collectors. nil means an empty
	// registry: every CollectEntropy fails HardwareUnavailable.
	Sources *source.Registry

	// Policy gates salt initialization and stamps pool TTLs. nil means
	// derive.DefaultPolicy.
	Policy *derive.Policy

	// Recorder receives audit events. nil means audit.Noop.
	Recorder audit.Recorder

	// XOF selects the combiner's extension function. 0 means SHAKE256.
	XOF xof.ID

	// Now supplies the clock; nil means time.Now in UTC. Tests pin it.
	Now func() time.Time

	// NewID mints pool IDs; nil means RFC 4122 v4 UUIDs.
	NewID func() string
}

// Engine wires the core operations together over one repository.
type Engine struct {
	mgr     *pool.Manager
	sources *source.Registry
	comb    *combiner.Combiner
	policy  derive.Policy
	rec     audit.Recorder
	now     func() time.Time
	newID   func() string
}

func New(repo storage.Repository, opts Options) *Engine {
	e := &Engine{
		mgr:     pool.NewManager(repo),
		sources: opts.Sources,
		comb:    &combiner.Combiner{XOF: opts.XOF},
		policy:  derive.DefaultPolicy(),
		rec:     opts.Recorder,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if e.sources == nil {
		e.sources = source.NewRegistry()
	}
	if opts.Policy != nil {
		e.policy = *opts.Policy
	}
	if e.rec == nil {
		e.rec = audit.Noop{}
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	e.mgr.Now = e.now
	return e
}

// Policy returns the engine's derivation policy.
func (e *Engine) Policy() derive.Policy { return e.policy }

// Manager exposes the lifecycle manager for hosts that need raw borrows
// (re-analysis tooling). Claiming still goes through the engine.
func (e *Engine) Manager() *pool.Manager { return e.mgr }

func (e *Engine) record(ev audit.Event) {
	ev.Time = e.now()
	e.rec.Record(ev)
}

// sourceAlgorithm is the label algorithm token for a collected pool.
func sourceAlgorithm(kind pool.SourceKind) string {
	switch kind {
	case pool.SourceHardwareChallenge:
		return "CHAL160"
	case pool.SourceDice:
		return "D6"
	case pool.SourceHardwareNoise:
		return "RAW"
	case pool.SourceSystemRNG:
		return "OSRNG"
	default:
		return "UNKNOWN"
	}
}
