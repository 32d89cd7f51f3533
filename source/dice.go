package source

import (
	"context"
	"math/big"

	"github.com/entropool/entropool/pool"
)

// RollReader yields physical die faces, one at a time. Implementations
// are user-paced; NextRoll blocks until a roll arrives or ctx ends.
type RollReader interface {
	// NextRoll returns the next face, 1 through 6.
	NextRoll(ctx context.Context) (int, error)
}

// Dice encodes a sequence of d6 rolls as a base-6 big-endian integer:
// faces 1..6 become digits 0..5 and each roll shifts the accumulated
// value by one base-6 digit. n rolls carry floor(n*log2(6)) bits, so the
// credited entropy is always below 8 bits per byte of output.
type Dice struct {
	Rolls RollReader
}

func (d *Dice) Kind() pool.SourceKind { return pool.SourceDice }

// UnitBits floors the per-roll entropy of log2(6) ≈ 2.585 bits.
func (d *Dice) UnitBits() int { return 2 }

func (d *Dice) Collect(ctx context.Context, targetBits int) ([]byte, int, error) {
	if err := checkTarget(targetBits); err != nil {
		return nil, 0, err
	}
	if d.Rolls == nil {
		return nil, 0, unavailable("EP-SRC-001", "no roll reader configured", nil)
	}

	rolls, actualBits, width := dicePlan(targetBits)
	value := new(big.Int)
	six := big.NewInt(6)
	digit := new(big.Int)
	for i := 0; i < rolls; i++ {
		if err := ctx.Err(); err != nil {
			scrubInt(value)
			return nil, 0, aborted(err)
		}
		face, err := d.Rolls.NextRoll(ctx)
		if err != nil {
			scrubInt(value)
			return nil, 0, abortedOrUnavailable("roll reader failed", err)
		}
		if face < 1 || face > 6 {
			scrubInt(value)
			return nil, 0, &pool.Error{
				Kind:    pool.KindEncoding,
				RuleID:  "EP-SRC-005",
				Message: "die face out of range 1..6",
			}
		}
		value.Mul(value, six)
		value.Add(value, digit.SetInt64(int64(face-1)))
	}

	out := value.FillBytes(make([]byte, width))
	scrubInt(value)
	return out, actualBits, nil
}

// dicePlan sizes a collection: the smallest roll count whose credited
// bits reach targetBits, the bits credited, and the fixed output width
// in bytes. All arithmetic is exact; floor(n*log2(6)) is the bit length
// of 6^n minus one.
func dicePlan(targetBits int) (rolls, actualBits, width int) {
	pow := big.NewInt(1)
	six := big.NewInt(6)
	for pow.BitLen()-1 < targetBits {
		pow.Mul(pow, six)
		rolls++
	}
	actualBits = pow.BitLen() - 1
	maxv := new(big.Int).Sub(pow, big.NewInt(1))
	width = (maxv.BitLen() + 7) / 8
	return rolls, actualBits, width
}

// scrubInt wipes a big.Int's limbs before releasing it.
func scrubInt(v *big.Int) {
	limbs := v.Bits()
	for i := range limbs {
		limbs[i] = 0
	}
	v.SetInt64(0)
}
