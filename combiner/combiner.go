// Package combiner merges entropy buffers without weakening the
// strongest input.
//
// The scheme, XMIX1: every input is stretched to the longest input's
// length with a domain-separated extendable-output function, and the
// stretched streams are XORed position-wise. Extension happens before
// the XOR, so identical inputs fold to the XOR of two distinct streams,
// never to zero. The combined claimed entropy is the maximum of the
// inputs' claims, not the sum; XOR of independent sources is only as
// strong as its strongest fully-random input.
package combiner

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cloudflare/circl/xof"

	"github.com/entropool/entropool/pool"
)

// seedPrefix domain-separates XMIX1 streams from every other use of the
// same XOF. The stream seed is:
//
//	seedPrefix || 0x00 || be32(index) || be32(len(data)) || 0x00 || data
//
// Binding the input's position and length keeps reordered or truncated
// input sets from colliding on the same stream.
const seedPrefix = "entropool/v1/xmix"

// Input is one source buffer with its claimed entropy.
type Input struct {
	Data []byte
	Bits int
}

// Result is the combined buffer and its claimed entropy.
type Result struct {
	Data []byte
	Bits int
}

// Combiner implements XMIX1 over a chosen extension function.
type Combiner struct {
	// XOF selects the extension function; zero means SHAKE256.
	XOF xof.ID
}

func New() *Combiner {
	return &Combiner{XOF: xof.SHAKE256}
}

func (c *Combiner) id() xof.ID {
	if c.XOF == 0 {
		return xof.SHAKE256
	}
	return c.XOF
}

// Algorithm returns the label token for this combiner, e.g.
// "XMIX1-SHAKE256".
func (c *Combiner) Algorithm() string {
	name, ok := XOFName(c.id())
	if !ok {
		return "XMIX1-UNKNOWN"
	}
	return "XMIX1-" + name
}

// Combine folds the inputs into one buffer of length max(len(input_i))
// with claimed entropy max(bits_i). A single input is extended only;
// callers get the same stream the input would contribute to any mix.
func (c *Combiner) Combine(inputs []Input) (*Result, error) {
	if err := c.check(inputs); err != nil {
		return nil, err
	}

	width := 0
	bits := 0
	for _, in := range inputs {
		if len(in.Data) > width {
			width = len(in.Data)
		}
		if in.Bits > bits {
			bits = in.Bits
		}
	}

	acc := make([]byte, width)
	for i, in := range inputs {
		stream := c.stream(i, in.Data, width)
		for j := range acc {
			acc[j] ^= stream[j]
		}
		pool.Zero(stream)
	}
	return &Result{Data: acc, Bits: bits}, nil
}

// Extend stretches one buffer to the given length using the stream it
// would contribute as the first input of a mix.
func (c *Combiner) Extend(data []byte, length int) ([]byte, error) {
	if err := c.check([]Input{{Data: data, Bits: 0}}); err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, &pool.Error{
			Kind:    pool.KindEncoding,
			RuleID:  "EP-MIX-003",
			Message: "extension length must be positive",
		}
	}
	return c.stream(0, data, length), nil
}

func (c *Combiner) check(inputs []Input) error {
	if _, ok := XOFName(c.id()); !ok {
		return &pool.Error{
			Kind:    pool.KindEncoding,
			RuleID:  "EP-MIX-004",
			Message: "unsupported extension function",
		}
	}
	if len(inputs) == 0 {
		return &pool.Error{
			Kind:    pool.KindEncoding,
			RuleID:  "EP-MIX-001",
			Message: "combine requires at least one input",
		}
	}
	for i, in := range inputs {
		if len(in.Data) == 0 {
			return &pool.Error{
				Kind:    pool.KindEncoding,
				RuleID:  "EP-MIX-002",
				Message: fmt.Sprintf("input %d is empty", i),
			}
		}
		if in.Bits < 0 || in.Bits > 8*len(in.Data) {
			return &pool.Error{
				Kind:         pool.KindEncoding,
				RuleID:       "EP-MIX-003",
				Message:      "claimed bits outside 0..8*len",
				RequiredBits: 8 * len(in.Data),
				ActualBits:   in.Bits,
			}
		}
	}
	return nil
}

// stream derives the input's XMIX1 stream of the given length.
func (c *Combiner) stream(index int, data []byte, length int) []byte {
	x := c.id().New()
	var be [4]byte

	_, _ = x.Write([]byte(seedPrefix))
	_, _ = x.Write([]byte{0x00})
	binary.BigEndian.PutUint32(be[:], uint32(index))
	_, _ = x.Write(be[:])
	binary.BigEndian.PutUint32(be[:], uint32(len(data)))
	_, _ = x.Write(be[:])
	_, _ = x.Write([]byte{0x00})
	_, _ = x.Write(data)

	out := make([]byte, length)
	_, _ = io.ReadFull(x, out)
	return out
}
