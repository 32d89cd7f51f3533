package storage

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// recEncMode is the CBOR encoder mode for records: canonical field order,
// definite lengths, RFC3339Nano timestamps. Deterministic encoding keeps
// file and wire envelopes byte-stable for a given record.
var recEncMode cbor.EncMode

// recDecMode is the CBOR decoder mode for records.
var recDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	recEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("storage: record CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	recDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("storage: record CBOR decoder mode: %v", err))
	}
}

// EncodeRecord encodes a validated record as its CBOR envelope. File and
// gRPC repositories share this codec.
func EncodeRecord(rec *Record) ([]byte, error) {
	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}
	return recEncMode.Marshal(rec)
}

// DecodeRecord decodes a CBOR envelope and re-validates it.
func DecodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := recDecMode.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := ValidateRecord(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// EncodeRecordList encodes a listing as a CBOR array. Listings are
// metadata-only (raw material omitted), so the per-record envelope
// validation does not apply.
func EncodeRecordList(recs []*Record) ([]byte, error) {
	if recs == nil {
		recs = []*Record{}
	}
	return recEncMode.Marshal(recs)
}

// DecodeRecordList decodes a CBOR listing array.
func DecodeRecordList(data []byte) ([]*Record, error) {
	var recs []*Record
	if err := recDecMode.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return recs, nil
}
