package pool

import "fmt"

// SourceKind identifies where a pool's raw material came from. The
// numeric values are persisted inside record envelopes; never renumber.
type SourceKind uint8

const (
	SourceUnknown           SourceKind = 0
	SourceHardwareChallenge SourceKind = 1
	SourceDice              SourceKind = 2
	SourceHardwareNoise     SourceKind = 3
	SourceSystemRNG         SourceKind = 4
	SourceComposite         SourceKind = 5
)

func (k SourceKind) String() string {
	switch k {
	case SourceHardwareChallenge:
		return "hardware-challenge"
	case SourceDice:
		return "dice"
	case SourceHardwareNoise:
		return "hardware-noise"
	case SourceSystemRNG:
		return "system-rng"
	case SourceComposite:
		return "composite"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Token is the source's uppercase label token.
func (k SourceKind) Token() string {
	switch k {
	case SourceHardwareChallenge:
		return "HWC"
	case SourceDice:
		return "DICE"
	case SourceHardwareNoise:
		return "NOISE"
	case SourceSystemRNG:
		return "SYSRNG"
	case SourceComposite:
		return "MIX"
	default:
		return "UNKNOWN"
	}
}

// ParseSourceKind accepts the String form of a known kind.
func ParseSourceKind(s string) (SourceKind, error) {
	for _, k := range []SourceKind{
		SourceHardwareChallenge, SourceDice, SourceHardwareNoise,
		SourceSystemRNG, SourceComposite,
	} {
		if s == k.String() {
			return k, nil
		}
	}
	return SourceUnknown, fmt.Errorf("unknown source kind %q", s)
}

func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseSourceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
