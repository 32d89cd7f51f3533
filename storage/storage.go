// Package storage defines the persistence contract for entropy pool
// records and an in-memory reference implementation.
//
// Records are the persisted, envelope-level form of a pool. The repository
// treats them as near-opaque state with a single lifecycle verb
// (MarkConsumed); interpreting sources, labels, or quality metrics is the
// lifecycle manager's business, one layer up.
package storage

import (
	"context"
	"time"
)

// Repository is the persistence collaborator for pool records.
//
// Contract:
//   - Create MUST reject records that fail ValidateRecord with
//     ErrInvalidRecord, and an ID that already exists with ErrAlreadyExists.
//     Callers assign IDs; repositories never mint them.
//   - Get MUST return a deep copy and ErrNotFound for unknown IDs.
//   - MarkConsumed MUST be atomic: exactly one of any set of concurrent
//     callers succeeds, the rest receive ErrAlreadyConsumed. It MUST also
//     destroy the stored raw material; a consumed record never resurfaces
//     its bytes. Consumption is monotonic.
//   - List MUST return copies with raw material omitted, ordered by
//     CreatedAt then ID.
//   - Implementations MUST NOT retry internally and MUST pass
//     storage/repotest.RunConformance.
//
// A deployment has exactly one authoritative repository. Replicating or
// fall-back layering would let two replicas hand out the same record's
// material twice, which the single-use property cannot survive.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	MarkConsumed(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, unconsumedOnly bool) ([]*Record, error)
}
