package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/entropool/entropool/quality"
)

// RecordVersion is the current persisted record schema version.
const RecordVersion = 1

// Record is the persisted form of an entropy pool.
//
// Raw is present only while the record is unconsumed; MarkConsumed zeroizes
// and drops it, leaving the metadata behind for audit. CBOR field keys are
// integers and stable; never renumber them.
type Record struct {
	Version     int             `cbor:"1,keyasint"`
	ID          string          `cbor:"2,keyasint"`
	Source      uint8           `cbor:"3,keyasint"`
	SizeBits    int             `cbor:"4,keyasint"`
	EntropyBits int             `cbor:"5,keyasint"`
	Raw         []byte          `cbor:"6,keyasint,omitempty"`
	CreatedAt   time.Time       `cbor:"7,keyasint"`
	ExpiresAt   time.Time       `cbor:"8,keyasint"`
	Consumed    bool            `cbor:"9,keyasint"`
	ConsumedAt  time.Time       `cbor:"10,keyasint"`
	Fingerprint string          `cbor:"11,keyasint,omitempty"`
	Label       string          `cbor:"12,keyasint,omitempty"`
	Lineage     []string        `cbor:"13,keyasint,omitempty"`
	Metrics     *quality.Report `cbor:"14,keyasint,omitempty"`
}

// ValidateRecord enforces the structural invariants every stored record
// satisfies. Violations are reported as ErrInvalidRecord.
func ValidateRecord(rec *Record) error {
	switch {
	case rec == nil:
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	case rec.Version != RecordVersion:
		return fmt.Errorf("%w: version %d", ErrInvalidRecord, rec.Version)
	case rec.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	case !rec.Consumed && len(rec.Raw) == 0:
		return fmt.Errorf("%w: unconsumed record without raw material", ErrInvalidRecord)
	case !rec.Consumed && rec.SizeBits != 8*len(rec.Raw):
		return fmt.Errorf("%w: sizeBits %d does not match %d raw bytes", ErrInvalidRecord, rec.SizeBits, len(rec.Raw))
	case rec.EntropyBits < 0 || rec.EntropyBits > rec.SizeBits:
		return fmt.Errorf("%w: entropyBits %d outside 0..%d", ErrInvalidRecord, rec.EntropyBits, rec.SizeBits)
	case rec.CreatedAt.IsZero():
		return fmt.Errorf("%w: missing createdAt", ErrInvalidRecord)
	case !rec.ExpiresAt.After(rec.CreatedAt):
		return fmt.Errorf("%w: expiresAt not after createdAt", ErrInvalidRecord)
	}
	return nil
}

// SortRecords orders records the way List must: CreatedAt ascending,
// ties broken by ID.
func SortRecords(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

// CloneRecord returns a deep copy. Nil in, nil out.
func CloneRecord(rec *Record) *Record {
	if rec == nil {
		return nil
	}
	out := *rec
	if rec.Raw != nil {
		out.Raw = append([]byte(nil), rec.Raw...)
	}
	if rec.Lineage != nil {
		out.Lineage = append([]string(nil), rec.Lineage...)
	}
	if rec.Metrics != nil {
		m := *rec.Metrics
		out.Metrics = &m
	}
	return &out
}
