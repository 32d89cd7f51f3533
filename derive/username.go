package derive

import (
	"crypto/sha256"
	"crypto/subtle"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/entropool/entropool/label"
	"github.com/entropool/entropool/pool"
)

// Alphabet is the identifier output alphabet: 32 characters with the
// confusable l/o/0/1 dropped. 32 divides 256, so mapping a byte through
// it with &31 is unbiased.
const Alphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// DefaultLength is the identifier length when the caller passes 0.
const DefaultLength = 16

// MaxLength bounds requested identifier lengths.
const MaxLength = 128

// UsernameFamily is the label type token for derived usernames.
const UsernameFamily = "UN1"

// SaltContext is the explicit derivation context passed into every
// identifier call. There is no ambient current salt; whoever holds a
// SaltContext decided which salt to use.
type SaltContext struct {
	key       []byte
	algorithm string
}

// ContextFromKey builds a context from raw key bytes, for interop and
// conformance vectors. Production callers use Salt.Context.
func ContextFromKey(key []byte) (SaltContext, error) {
	if len(key) == 0 {
		return SaltContext{}, &pool.Error{
			Kind:    pool.KindEncoding,
			RuleID:  "EP-DRV-006",
			Message: "salt context requires key material",
		}
	}
	return SaltContext{
		key:       append([]byte(nil), key...),
		algorithm: AlgorithmHKDFSHA256,
	}, nil
}

// Algorithm is the derivation algorithm token of the underlying salt.
func (sc SaltContext) Algorithm() string { return sc.algorithm }

// NormalizeDomain maps caller-supplied domain spellings to the canonical
// form identifiers are derived from: scheme and path stripped when a URL
// was pasted, lowercased, charset-checked. Two spellings of one site must
// normalize identically or they silently derive different identifiers.
func NormalizeDomain(domain string) (string, error) {
	s := strings.TrimSpace(domain)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+len("://"):]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.ToLower(s)

	if s == "" || len(s) > 64 {
		return "", malformedDomain(domain)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_':
		default:
			return "", malformedDomain(domain)
		}
	}
	if s[0] == '.' || s[0] == '-' || s[0] == '_' {
		return "", malformedDomain(domain)
	}
	return s, nil
}

func malformedDomain(domain string) error {
	return &pool.Error{
		Kind:    pool.KindEncoding,
		RuleID:  "EP-DRV-003",
		Message: "malformed domain " + strings.TrimSpace(domain),
	}
}

// Username derives the identifier for domain. length 0 means
// DefaultLength; valid lengths are 1..MaxLength.
//
// Pure and idempotent: identical (salt, domain, length) always yields
// identical output, and a shorter length is a prefix of a longer one
// because both read the same keyed stream.
func (sc SaltContext) Username(domain string, length int) (string, error) {
	if len(sc.key) == 0 {
		return "", &pool.Error{
			Kind:    pool.KindEncoding,
			RuleID:  "EP-DRV-006",
			Message: "empty salt context",
		}
	}
	if length == 0 {
		length = DefaultLength
	}
	if length < 1 || length > MaxLength {
		return "", &pool.Error{
			Kind:    pool.KindEncoding,
			RuleID:  "EP-DRV-004",
			Message: "identifier length outside 1..128",
		}
	}
	normalized, err := NormalizeDomain(domain)
	if err != nil {
		return "", err
	}

	r := hkdf.New(sha256.New, sc.key, []byte(usernameSaltLabel), []byte(usernameInfoPfx+normalized))
	stream := make([]byte, length)
	if _, err := io.ReadFull(r, stream); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range stream {
		out[i] = Alphabet[b&31]
	}
	pool.Zero(stream)
	return string(out), nil
}

// Verify recomputes the identifier for domain at the candidate's length
// and compares in constant time. Out-of-range candidate lengths verify
// false; only a malformed domain is an error.
func (sc SaltContext) Verify(domain, candidate string) (bool, error) {
	if len(candidate) < 1 || len(candidate) > MaxLength {
		if _, err := NormalizeDomain(domain); err != nil {
			return false, err
		}
		return false, nil
	}
	derived, err := sc.Username(domain, len(candidate))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(derived), []byte(candidate)) == 1, nil
}

// Identifier is the audit-convenience form of one derivation. Value is
// always recomputable; persisting an Identifier is never authoritative.
type Identifier struct {
	Domain  string `json:"domain"`
	SaltRef string `json:"saltRef,omitempty"`
	Length  int    `json:"length"`
	Value   string `json:"value"`
	Label   string `json:"label,omitempty"`
}

// NewIdentifier derives an identifier together with its provenance
// label. saltRef may be empty when the context came from raw key bytes.
func NewIdentifier(sc SaltContext, saltRef, domain string, length int, at time.Time) (*Identifier, error) {
	normalized, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	value, err := sc.Username(normalized, length)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		length = DefaultLength
	}
	lbl, err := label.ForIdentifier(UsernameFamily, sc.algorithm, normalized, at,
		label.Param{Key: label.KeyLength, Value: strconv.Itoa(length)})
	if err != nil {
		return nil, err
	}
	return &Identifier{
		Domain:  normalized,
		SaltRef: saltRef,
		Length:  length,
		Value:   value,
		Label:   lbl,
	}, nil
}
