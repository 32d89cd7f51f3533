package pool

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short public identifier for raw material: the
// hex of the first 8 bytes of its BLAKE2b-256 digest. It appears in
// listings and audit events where the material itself must not.
func Fingerprint(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}
