// Package derive turns consumed entropy pools into persistent salts and
// salts into deterministic per-domain identifiers.
//
// A salt is born from exactly one pool: initialization claims the pool
// (single winner under concurrency) and stretches its raw material
// through HKDF-SHA256 with fixed, versioned context strings. Everything
// after that is pure: the same salt and domain always derive the same
// identifier, with no further pool consumption.
package derive

import (
	"crypto/sha256"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/entropool/entropool/chainid"
	"github.com/entropool/entropool/label"
	"github.com/entropool/entropool/pool"
)

// SaltSize is the fixed salt length in bytes.
const SaltSize = 64

// AlgorithmHKDFSHA256 is the label token of the only derivation
// algorithm this version implements.
const AlgorithmHKDFSHA256 = "HKDF-SHA256"

// Domain-separation strings. Versioned: a future construction change
// bumps the v1 segment rather than silently changing outputs.
const (
	saltExtractLabel  = "entropool/v1/salt-extract"
	saltInfoPrefix    = "entropool/v1/salt/"
	usernameSaltLabel = "entropool/v1/username"
	usernameInfoPfx   = "domain:"
)

// Salt is the persistent derivation secret. Immutable once created; the
// secret bytes are reachable only through copying accessors.
type Salt struct {
	ownerPoolID string
	algorithm   string
	createdAt   time.Time
	labelStr    string
	ref         string
	secret      []byte
}

// OwnerPoolID names the single pool consumed to create this salt.
func (s *Salt) OwnerPoolID() string { return s.ownerPoolID }

// Algorithm is the derivation algorithm token, e.g. HKDF-SHA256.
func (s *Salt) Algorithm() string { return s.algorithm }

func (s *Salt) CreatedAt() time.Time { return s.createdAt }

// Label is the canonical SALT provenance label.
func (s *Salt) Label() string { return s.labelStr }

// Ref is the CID of the canonical label bytes: a public reference that
// never depends on the secret.
func (s *Salt) Ref() string { return s.ref }

// Bytes returns a copy of the secret. The caller should Zero it.
func (s *Salt) Bytes() []byte {
	return append([]byte(nil), s.secret...)
}

// Zero wipes the secret in place. The salt is unusable afterwards.
func (s *Salt) Zero() {
	pool.Zero(s.secret)
}

// Context returns the derivation context for this salt.
func (s *Salt) Context() SaltContext {
	return SaltContext{
		key:       append([]byte(nil), s.secret...),
		algorithm: s.algorithm,
	}
}

// deriveSecret runs the extract-and-expand step over a claimed pool's
// raw material. The owner pool ID rides in the info string, binding the
// salt to its provenance.
func deriveSecret(raw []byte, ownerPoolID string) ([]byte, error) {
	r := hkdf.New(sha256.New, raw, []byte(saltExtractLabel), []byte(saltInfoPrefix+ownerPoolID))
	secret := make([]byte, SaltSize)
	if _, err := io.ReadFull(r, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// newSalt assembles the salt value, its label, and its ref.
func newSalt(secret []byte, sourceToken, ownerPoolID string, at time.Time) (*Salt, error) {
	lbl, err := label.ForSalt(sourceToken, AlgorithmHKDFSHA256, ownerPoolID, at)
	if err != nil {
		return nil, &pool.Error{
			Kind:    pool.KindEncoding,
			RuleID:  "EP-DRV-005",
			Message: "salt label rendering failed",
			PoolID:  ownerPoolID,
			Cause:   err,
		}
	}
	return &Salt{
		ownerPoolID: ownerPoolID,
		algorithm:   AlgorithmHKDFSHA256,
		createdAt:   at,
		labelStr:    lbl,
		ref:         chainid.String([]byte(lbl)),
		secret:      secret,
	}, nil
}
