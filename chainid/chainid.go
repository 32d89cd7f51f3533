// Package chainid derives content identifiers for audit artifacts.
//
// Salts and audit trail entries are referenced by the CID of their
// canonical bytes, so a reference is simultaneously an integrity check:
// recomputing the CID of the referenced bytes must reproduce it.
package chainid

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Compute returns a CIDv1 (raw + sha2-256) derived from data.
func Compute(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// String returns the CIDv1 string for data.
func String(data []byte) string {
	id, err := Compute(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1
		// length, this should be unreachable.
		return ""
	}
	return id.String()
}

// Verify reports whether data reproduces the reference CID.
func Verify(ref cid.Cid, data []byte) bool {
	if !ref.Defined() {
		return false
	}
	id, err := Compute(data)
	if err != nil {
		return false
	}
	return id.Equals(ref)
}
