package pool

import "errors"

// Kind is a stable failure category for programmatic error handling.
//
// The taxonomy is closed: every failure the lifecycle, sources, and
// derivation can produce maps to exactly one of these kinds. Callers
// should branch on Kind/RuleID rather than matching error strings.
type Kind string

const (
	// KindHardwareUnavailable: a hardware source is absent, mis-sized,
	// or stuck.
	KindHardwareUnavailable Kind = "HardwareUnavailable"
	// KindAborted: the caller canceled mid-collection; partial data was
	// discarded, never returned.
	KindAborted Kind = "CollectionAborted"
	// KindInsufficientEntropy: a pool holds fewer estimated entropy bits
	// than the operation requires.
	KindInsufficientEntropy Kind = "InsufficientEntropy"
	// KindQualityRejected: a pool's statistical tier is below the policy
	// floor and no override was given.
	KindQualityRejected Kind = "QualityRejected"
	// KindConsumed: the pool was already claimed; single-use admits no
	// second winner.
	KindConsumed Kind = "PoolConsumed"
	// KindExpired: the pool's TTL has lapsed and the policy does not
	// allow expired material.
	KindExpired Kind = "PoolExpired"
	// KindEncoding: malformed caller input (domain, length, rolls, salt
	// material).
	KindEncoding Kind = "Encoding"
)

// Error is the structured error type shared by the lifecycle manager,
// source adapters, and the derivation engine.
//
// RuleID is a stable identifier (e.g., EP-POOL-001, EP-SRC-002) naming the
// violated rule. PoolID, RequiredBits, and ActualBits carry the context a
// caller needs to format a message; they are zero when not applicable.
type Error struct {
	Kind         Kind
	RuleID       string
	Message      string
	PoolID       string
	RequiredBits int
	ActualBits   int
	Cause        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}

func consumedError(poolID string) error {
	return &Error{
		Kind:    KindConsumed,
		RuleID:  "EP-POOL-001",
		Message: "pool " + poolID + " is already consumed",
		PoolID:  poolID,
	}
}

func expiredError(poolID string) error {
	return &Error{
		Kind:    KindExpired,
		RuleID:  "EP-POOL-002",
		Message: "pool " + poolID + " is expired",
		PoolID:  poolID,
	}
}
