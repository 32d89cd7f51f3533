package quality

import "fmt"

// Tier is the quality verdict for a buffer. Ordering is meaningful:
// TierPoor < TierFair < TierGood < TierExcellent.
type Tier uint8

const (
	TierPoor Tier = iota
	TierFair
	TierGood
	TierExcellent
)

func (t Tier) String() string {
	switch t {
	case TierPoor:
		return "POOR"
	case TierFair:
		return "FAIR"
	case TierGood:
		return "GOOD"
	case TierExcellent:
		return "EXCELLENT"
	default:
		return fmt.Sprintf("Tier(%d)", uint8(t))
	}
}

// AtLeast reports whether t meets the floor min.
func (t Tier) AtLeast(min Tier) bool {
	return t >= min
}

// ParseTier parses the String form. Unknown input returns an error.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "POOR":
		return TierPoor, nil
	case "FAIR":
		return TierFair, nil
	case "GOOD":
		return TierGood, nil
	case "EXCELLENT":
		return TierExcellent, nil
	default:
		return TierPoor, fmt.Errorf("quality: unknown tier %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler, so JSON output carries the
// tier name rather than its rank.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Classify maps the two gating metrics to a tier.
//
// Bands are inclusive at both ends. Note that a p-value above 0.99 means the
// distribution is suspiciously uniform; such buffers fall through every band
// to TierPoor even at maximal entropy.
func Classify(entropyBitsPerByte, chiPValue float64) Tier {
	switch {
	case entropyBitsPerByte >= 7.99 && chiPValue >= 0.1 && chiPValue <= 0.9:
		return TierExcellent
	case entropyBitsPerByte >= 7.9 && chiPValue >= 0.05 && chiPValue <= 0.95:
		return TierGood
	case entropyBitsPerByte >= 7.5 && chiPValue >= 0.01 && chiPValue <= 0.99:
		return TierFair
	default:
		return TierPoor
	}
}
