// Package audit carries the event stream the library emits at every
// pool and salt transition.
//
// The core never logs; it records typed events through the Recorder
// seam and leaves rendering to the host. Identifier values never enter
// an event: the trail records which domain was derived against which
// salt, not what came out, so a leaked trail links no accounts.
package audit

import (
	"fmt"
	"time"
)

// Op enumerates the auditable operations. Numeric values are persisted
// in trail entries; never renumber.
type Op uint8

const (
	OpUnknown           Op = 0
	OpPoolCollected     Op = 1
	OpPoolCombined      Op = 2
	OpPoolValidated     Op = 3
	OpSaltInitialized   Op = 4
	OpIdentifierDerived Op = 5
	OpQualityOverride   Op = 6
	OpFreshnessOverride Op = 7
)

func (o Op) String() string {
	switch o {
	case OpPoolCollected:
		return "pool.collected"
	case OpPoolCombined:
		return "pool.combined"
	case OpPoolValidated:
		return "pool.validated"
	case OpSaltInitialized:
		return "salt.initialized"
	case OpIdentifierDerived:
		return "identifier.derived"
	case OpQualityOverride:
		return "quality.override"
	case OpFreshnessOverride:
		return "freshness.override"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// Event is one auditable transition. Fields not applicable to an Op are
// zero. Raw material and derived identifier values are never carried.
type Event struct {
	Time    time.Time `cbor:"1,keyasint"`
	Op      Op        `cbor:"2,keyasint"`
	PoolID  string    `cbor:"3,keyasint,omitempty"`
	Source  string    `cbor:"4,keyasint,omitempty"`
	Bits    int       `cbor:"5,keyasint,omitempty"`
	Tier    string    `cbor:"6,keyasint,omitempty"`
	Label   string    `cbor:"7,keyasint,omitempty"`
	SaltRef string    `cbor:"8,keyasint,omitempty"`
	Domain  string    `cbor:"9,keyasint,omitempty"`
	Detail  string    `cbor:"10,keyasint,omitempty"`
	Lineage []string  `cbor:"11,keyasint,omitempty"`
}

// Recorder receives events. Implementations must be safe for concurrent
// use; Record must not block on user-paced I/O.
type Recorder interface {
	Record(ev Event)
}

// Noop discards every event. The library default.
type Noop struct{}

func (Noop) Record(Event) {}

var _ Recorder = Noop{}

// Multi fans one event out to several recorders in order.
type Multi []Recorder

func (m Multi) Record(ev Event) {
	for _, r := range m {
		if r != nil {
			r.Record(ev)
		}
	}
}

var _ Recorder = Multi(nil)
