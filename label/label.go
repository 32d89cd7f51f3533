// Package label implements the compact provenance-label line format that
// annotates entropy pools, derivation salts, and derived identifiers.
//
// A v1 label is a single printable-ASCII line:
//
//	<Category>/<Type>/<Algorithm>:<data>:<date>#<params>|<check>
//
// Parsing accepts parameters in any order; rendering always emits the
// canonical form (parameters sorted by key, checksum appended). The check
// character is the byte sum of everything before '|', mod 36, in 0-9A-Z.
package label

import "time"

// DateLayout is the canonical civil-date form carried by every label.
const DateLayout = "2006-01-02"

// Categories emitted by this module. The codec itself accepts any token.
const (
	CategoryPool  = "POOL"
	CategorySalt  = "SALT"
	CategoryIdent = "IDENT"
)

// Parameter keys emitted by this module.
const (
	KeyBits    = "BITS" // buffer size in bits
	KeyEntropy = "ENT"  // claimed entropy in bits
	KeySources = "SRC"  // contributing pool count (composite pools)
	KeyLength  = "LEN"  // derived output length
)

// Label is the in-memory representation of a provenance label.
//
// Params preserve the order they were parsed or assembled in; Render sorts
// them. Field values are validated only at Parse and Render time.
type Label struct {
	Category  string
	Type      string
	Algorithm string
	Data      string
	Date      string // canonical YYYY-MM-DD, UTC civil date
	Params    []Param
}

// Param is a single KEY=value pair.
type Param struct {
	Key   string
	Value string
}

// Get returns the value for key and whether it is present.
func (l *Label) Get(key string) (string, bool) {
	for _, p := range l.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// CivilDate formats t as the canonical label date (UTC).
func CivilDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ForPool renders the canonical label for a collected or combined pool.
// typeToken is the source-kind token (HWC, DICE, NOISE, SYSRNG, MIX).
func ForPool(typeToken, algorithm, poolID string, date time.Time, params ...Param) (string, error) {
	return Render(&Label{
		Category:  CategoryPool,
		Type:      typeToken,
		Algorithm: algorithm,
		Data:      poolID,
		Date:      CivilDate(date),
		Params:    params,
	})
}

// ForSalt renders the canonical label for a derivation salt. typeToken is
// the source-kind token of the pool the salt was derived from.
func ForSalt(typeToken, algorithm, ownerPoolID string, date time.Time, params ...Param) (string, error) {
	return Render(&Label{
		Category:  CategorySalt,
		Type:      typeToken,
		Algorithm: algorithm,
		Data:      ownerPoolID,
		Date:      CivilDate(date),
		Params:    params,
	})
}

// ForIdentifier renders the canonical label for a derived identifier.
// data is the normalized domain the identifier belongs to.
func ForIdentifier(family, algorithm, domain string, date time.Time, params ...Param) (string, error) {
	return Render(&Label{
		Category:  CategoryIdent,
		Type:      family,
		Algorithm: algorithm,
		Data:      domain,
		Date:      CivilDate(date),
		Params:    params,
	})
}
