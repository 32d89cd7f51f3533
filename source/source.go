// Package source holds the entropy source adapters: one collector per
// physical or system source, plus the registry that resolves a source
// kind to its collector.
//
// Collection is blocking, user-paced I/O (dice rolls, device touches).
// Every adapter honors cancellation between units and discards partial
// buffers on any failure path; aborted collections never leak bytes to
// the caller or to storage.
package source

import (
	"context"
	"errors"

	"github.com/entropool/entropool/pool"
)

// Collector is the adapter contract.
//
// Collect gathers at least targetBits of estimated entropy, rounding up
// to whole collection units, and reports the entropy actually credited,
// never the request. actualBits is at most 8*len(data); for sources whose
// units carry fractional bits (dice) it is strictly less. On error no
// data is returned and any partial buffer has been wiped.
type Collector interface {
	Kind() pool.SourceKind

	// UnitBits is the entropy credited per collection unit, floored for
	// sources with fractional bits per unit.
	UnitBits() int

	Collect(ctx context.Context, targetBits int) (data []byte, actualBits int, err error)
}

func checkTarget(targetBits int) error {
	if targetBits <= 0 {
		return &pool.Error{
			Kind:         pool.KindEncoding,
			RuleID:       "EP-SRC-004",
			Message:      "target bits must be positive",
			RequiredBits: targetBits,
		}
	}
	return nil
}

func unavailable(ruleID, msg string, cause error) error {
	return &pool.Error{
		Kind:    pool.KindHardwareUnavailable,
		RuleID:  ruleID,
		Message: msg,
		Cause:   cause,
	}
}

func aborted(cause error) error {
	return &pool.Error{
		Kind:    pool.KindAborted,
		RuleID:  "EP-SRC-010",
		Message: "collection canceled; partial data discarded",
		Cause:   cause,
	}
}

func abortedOrUnavailable(msg string, cause error) error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return aborted(cause)
	}
	return unavailable("EP-SRC-001", msg, cause)
}
