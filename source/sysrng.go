package source

import (
	"context"
	"crypto/rand"
	"io"

	"github.com/entropool/entropool/pool"
)

// SystemRNG collects from the operating system's RNG. It exists as the
// baseline source and as mixing material for the hardware sources.
type SystemRNG struct {
	// Reader supplies the randomness; nil means crypto/rand.Reader.
	Reader io.Reader
}

func (s *SystemRNG) Kind() pool.SourceKind { return pool.SourceSystemRNG }

func (s *SystemRNG) UnitBits() int { return 8 }

func (s *SystemRNG) Collect(ctx context.Context, targetBits int) ([]byte, int, error) {
	if err := checkTarget(targetBits); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, aborted(err)
	}

	buf := make([]byte, (targetBits+7)/8)
	if _, err := io.ReadFull(s.reader(), buf); err != nil {
		pool.Zero(buf)
		return nil, 0, unavailable("EP-SRC-001", "system rng read failed", err)
	}
	return buf, 8 * len(buf), nil
}

func (s *SystemRNG) reader() io.Reader {
	if s.Reader != nil {
		return s.Reader
	}
	return rand.Reader
}
